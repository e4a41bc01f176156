// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeConfigMissingValue Code = "config.validate.missing_value"
	CodeConfigInvalidValue Code = "config.validate.invalid_value"
	CodeConfigReadFailure  Code = "config.load.read.failure"

	CodeChunkInvalidStride Code = "chunk.invalid_stride"

	CodeStoreConnectionFailure Code = "store.connection.failure"
	CodeStoreDatabaseFailure   Code = "store.database.failure"

	CodeEmbedUpstreamFailure Code = "embed.upstream.failure"

	CodeIngestDuplicateSubmission Code = "ingest.duplicate_submission"

	CodeRetrieveQueryFailure    Code = "retrieve.query.failure"
	CodeRetrieveDecodeMalformed Code = "retrieve.decode.malformed"

	CodeAgentCompletionFailure Code = "agent.completion.failure"

	CodeChainLookupFailure Code = "chain.lookup.failure"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerStartFailure    Code = "server.start.failure"

	CodeCLISetupFailure Code = "cli.setup.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldOwner(value string) Attr {
	return Field("owner", value)
}

func FieldTitle(value string) Attr {
	return Field("title", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsDuplicateSubmission reports whether err is the business-rule rejection
// from the ingest dedup check, as opposed to a system fault.
func IsDuplicateSubmission(err error) bool {
	return HasCode(err, CodeIngestDuplicateSubmission)
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_stride" || r == "invalid_value" || r == "missing_value"
}

func IsMalformedResult(err error) bool {
	return HasCode(err, CodeRetrieveDecodeMalformed)
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	if code == CodeAgentCompletionFailure {
		return true
	}
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

func HTTPStatus(err error) int {
	switch {
	case IsDuplicateSubmission(err):
		return http.StatusConflict
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Help(t *testing.T) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"--help"})

	err := root.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "driftbottle")
	assert.Contains(t, buf.String(), "start")
	assert.Contains(t, buf.String(), "version")
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"version"})

	err := root.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "driftbottle")
	assert.Contains(t, buf.String(), "dev")
}

func TestStartCommand_MissingConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"start", "--config", "/nonexistent/path.yaml"})

	err := root.Execute()
	assert.Error(t, err)
}

func TestStartCommand_DiscoversConfigInWorkingDir(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// The invalid listen port is only reported if the discovered file
	// actually reached config loading.
	dir := t.TempDir()
	cfg := `
openai:
  api_key: "test-key"
  base_url: "https://api.example.com/v1"
embedding:
  model: "bge-m3"
chat:
  model: "deepseek-ai/DeepSeek-V3"
server:
  listen: "0.0.0.0:99999"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "driftbottle.yaml"), []byte(cfg), 0o644))
	t.Chdir(dir)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"start"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.listen port")
}

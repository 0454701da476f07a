package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

const echoTool = `
class EchoTool:
    def get_name(self):
        return "echo"

    def get_description(self):
        return "Echoes the input payload back to the caller."

    def execute(self, payload):
        return payload
`

func TestScanWritesSummary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echo.py"), []byte(echoTool), 0o600))

	var buf bytes.Buffer
	err := New(zap.NewNop()).Scan(context.Background(), ScanConfig{Directory: dir}, &buf)
	require.NoError(t, err)

	var summary domain.CatalogSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.Equal(t, dir, summary.Directory)
	assert.Equal(t, 1, summary.ToolCount)
	require.Len(t, summary.Tools, 1)
	assert.Equal(t, "echo", summary.Tools[0].Name)
}

func TestScanRequiresDirectory(t *testing.T) {
	t.Setenv(domain.ScanDirectoryEnvVar, "")

	var buf bytes.Buffer
	err := New(zap.NewNop()).Scan(context.Background(), ScanConfig{}, &buf)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
}

func TestValidateConfig(t *testing.T) {
	t.Setenv(domain.DefaultGeminiAPIKeyEnvVar, "test-key")

	t.Run("defaults pass", func(t *testing.T) {
		err := New(zap.NewNop()).ValidateConfig(context.Background(), ValidateConfig{})
		assert.NoError(t, err)
	})

	t.Run("bad transport mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("transport:\n  mode: carrier-pigeon\n"), 0o600))

		err := New(zap.NewNop()).ValidateConfig(context.Background(), ValidateConfig{ConfigPath: path})
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.CodeInvalidArgument))
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Setenv(domain.DefaultGeminiAPIKeyEnvVar, "")

		err := New(zap.NewNop()).ValidateConfig(context.Background(), ValidateConfig{})
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.CodeFailedPrecond))
	})
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvTracksMissing(t *testing.T) {
	t.Setenv("TOOLSCOUT_PRESENT", "present")

	expanded, missing, err := expandEnv([]byte("a: ${TOOLSCOUT_PRESENT}\nb: ${TOOLSCOUT_ABSENT_ONE}\nc: ${TOOLSCOUT_ABSENT_TWO}\n"))
	require.NoError(t, err)
	assert.Contains(t, expanded, "a: present")
	assert.Equal(t, []string{"TOOLSCOUT_ABSENT_ONE", "TOOLSCOUT_ABSENT_TWO"}, missing)
}

func TestRetagScalar(t *testing.T) {
	tests := []struct {
		value     string
		wantTag   string
		wantValue string
	}{
		{"90", "!!int", "90"},
		{"true", "!!bool", "true"},
		{"1.5", "!!float", "1.5"},
		{"hello", "!!str", "hello"},
		{"", "!!str", ""},
	}
	for _, tt := range tests {
		tag, value := retagScalar(tt.value)
		assert.Equal(t, tt.wantTag, tag, tt.value)
		assert.Equal(t, tt.wantValue, value, tt.value)
	}
}

package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosCommandListsValidFiles(t *testing.T) {
	out, _, err := execute(t, "scenarios", "testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "greeting.yaml")
	assert.Contains(t, out, "expected-fallback.yaml")
	assert.Contains(t, out, "3 scenarios, 0 invalid")
}

func TestScenariosCommandFailsOnInvalidFile(t *testing.T) {
	out, _, err := execute(t, "scenarios", "testdata/broken")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "1 invalid")
}

func TestScenariosCommandJSON(t *testing.T) {
	out, _, err := execute(t, "scenarios", "testdata/scenarios", "--format", "json")
	require.NoError(t, err)

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Scenarios []struct {
				File    string `json:"file"`
				Name    string `json:"name"`
				Islands int    `json:"islands"`
			} `json:"scenarios"`
			Invalid int `json:"invalid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, "ok", envelope.Status)
	assert.Len(t, envelope.Data.Scenarios, 3)
	assert.Equal(t, 0, envelope.Data.Invalid)
}

func TestScenariosCommandMissingDir(t *testing.T) {
	_, _, err := execute(t, "scenarios", "testdata/no-such-dir")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

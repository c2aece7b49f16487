package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommandCleanHydration(t *testing.T) {
	out, _, err := execute(t, "check", "testdata/scenarios/greeting.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "greeting-0")
	assert.Contains(t, out, "hydrated")
	assert.Contains(t, out, "1 islands, 0 unexpected outcomes")
}

func TestCheckCommandExpectedFallbackPasses(t *testing.T) {
	out, _, err := execute(t, "check", "testdata/scenarios/expected-fallback.yaml")
	require.NoError(t, err, "a declared fallback is not a check failure")
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "0 unexpected outcomes")
}

func TestCheckCommandUnexpectedFallbackFails(t *testing.T) {
	out, _, err := execute(t, "check", "testdata/scenarios/unexpected-fallback.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 unexpected outcomes")
}

func TestCheckCommandMissingFile(t *testing.T) {
	_, _, err := execute(t, "check", "testdata/scenarios/no-such.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

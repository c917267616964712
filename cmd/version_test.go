package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Output(t *testing.T) {
	output, err := execCommand(t, newVersionCmd(), "version")
	require.NoError(t, err)

	// Under `go test` the main module version may be unknown.
	known := strings.Contains(output, "tool version") && strings.Contains(output, "go version")
	assert.True(t, known || strings.Contains(output, "version: unknown"), output)
}

package loader_test

import (
	"path/filepath"
	"testing"

	"github.com/hearthlang/hearth/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidProgram(t *testing.T) {
	program, err := loader.Parse([]byte("PUSH 1\nPUSH 2\nADD\nPRINT\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"PUSH 1", "PUSH 2", "ADD", "PRINT"}, program)
}

func TestParse_SkipsBlankLines(t *testing.T) {
	program, err := loader.Parse([]byte("PUSH 1\n\nPRINT\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"PUSH 1", "PRINT"}, program)
}

func TestParse_RejectsUnknownOpcode(t *testing.T) {
	_, err := loader.Parse([]byte("FROB 1\n"))
	require.Error(t, err)
}

func TestValidate_RejectsUndefinedJumpTarget(t *testing.T) {
	err := loader.Validate([]string{"JMP nowhere"})
	require.Error(t, err)
}

func TestValidate_AcceptsDefinedJumpTarget(t *testing.T) {
	err := loader.Validate([]string{"LABEL L0", "JMP L0"})
	require.NoError(t, err)
}

func TestValidate_RejectsUndefinedJZTarget(t *testing.T) {
	err := loader.Validate([]string{"PUSH 1", "JZ nowhere"})
	require.Error(t, err)
}

func TestSaveAndLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.hbc")

	original := []string{"PUSH 1", "PUSH 2", "ADD", "PRINT"}
	require.NoError(t, loader.Save(path, original))

	loaded, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

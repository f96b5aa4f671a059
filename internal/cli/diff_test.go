package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policytrack/internal/diff"
	"policytrack/internal/model"
)

func writeText(t *testing.T, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o600))
	return p
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeText(t, dir, "v1.txt", "Employees must submit travel requests two weeks in advance.")
	newPath := writeText(t, dir, "v2.txt",
		"Employees must submit travel requests two weeks in advance.\n\n  Receipts are required for every expense.")

	out, err := execute(t, nil, "diff", oldPath, newPath, "--format", "json", "--name", "Travel Policy")
	require.NoError(t, err)

	var res diff.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Stats.Total)
	assert.Equal(t, 1, res.Stats.Added)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, model.ChangeAdded, res.Changes[0].Type)
	assert.Equal(t, "Receipts are required for every expense.", res.Changes[0].After)
	assert.Contains(t, res.Changes[0].Summary, "Travel Policy")
}

func TestDiffCommand_Text(t *testing.T) {
	dir := t.TempDir()
	p := writeText(t, dir, "same.txt", "Nothing   changes\nhere at all.")
	q := writeText(t, dir, "same2.txt", "Nothing changes here at all.")

	out, err := execute(t, nil, "diff", p, q)
	require.NoError(t, err)
	assert.Equal(t, "0 changes (0 added, 0 removed)\n", out)
}

func TestDiffCommand_MissingFile(t *testing.T) {
	dir := t.TempDir()
	p := writeText(t, dir, "v1.txt", "text")

	_, err := execute(t, nil, "diff", p, filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

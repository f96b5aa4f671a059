package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policytrack/internal/repository"
	"policytrack/internal/repository/memory"
)

const testNow = "2024-01-10T09:30:00Z"

func memoryOpener(repo repository.DocumentRepository) RepositoryOpener {
	return func(ctx context.Context) (repository.DocumentRepository, func() error, error) {
		return repo, func() error { return nil }, nil
	}
}

func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	if opts == nil {
		opts = &RootOptions{OpenRepository: memoryOpener(memory.NewDocumentMemory())}
	}
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand(&RootOptions{})
	require.NotNil(t, cmd)
	assert.Equal(t, "policyctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand(&RootOptions{})
	for _, name := range []string{"period", "periods", "diff", "digest"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := newRootCommand(&RootOptions{})

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	retention := cmd.PersistentFlags().Lookup("retention-months")
	require.NotNil(t, retention)
	assert.Equal(t, "12", retention.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("at"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, nil, "period", "week", "2024", "2", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestInvalidAt(t *testing.T) {
	_, err := execute(t, nil, "period", "week", "2024", "2", "--at", "yesterday")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "read", assert.AnError)))
	assert.Equal(t, "read: "+assert.AnError.Error(), WrapExitError(ExitCommandError, "read", assert.AnError).Error())
}

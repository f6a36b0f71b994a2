package execshell_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/eolcdt/internal/execshell"
)

func TestCappedBufferRetainsPrefixAndAcknowledgesEverything(testInstance *testing.T) {
	cappedBuffer := execshell.NewCappedBuffer(5)

	writtenCount, writeError := cappedBuffer.Write([]byte("abc"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 3, writtenCount)
	require.False(testInstance, cappedBuffer.Truncated())

	writtenCount, writeError = cappedBuffer.Write([]byte("defgh"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 5, writtenCount)

	writtenCount, writeError = cappedBuffer.Write([]byte("ijk"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 3, writtenCount)

	require.Equal(testInstance, "abcde", cappedBuffer.String())
	require.True(testInstance, cappedBuffer.Truncated())
}

func TestCappedBufferWithoutLimit(testInstance *testing.T) {
	cappedBuffer := execshell.NewCappedBuffer(0)
	_, writeError := cappedBuffer.Write([]byte("everything is kept"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, []byte("everything is kept"), cappedBuffer.Bytes())
	require.False(testInstance, cappedBuffer.Truncated())
}

func TestOSCommandRunnerCapsStandardOutput(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh is not available")
	}

	runner := execshell.NewOSCommandRunner()
	command := execshell.ShellCommand{
		Name: execshell.CommandName("sh"),
		Details: execshell.CommandDetails{
			Arguments:              []string{"-c", "i=0; while [ $i -lt 2000 ]; do printf 'line\\n'; i=$((i+1)); done; exit 3"},
			MaxStandardOutputBytes: 10,
		},
	}

	executionResult, runError := runner.Run(context.Background(), command)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, executionResult.ExitCode)
	require.Equal(testInstance, "line\nline\n", executionResult.StandardOutput)
	require.True(testInstance, executionResult.StandardOutputTruncated)
}

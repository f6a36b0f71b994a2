package vcstest

import (
	"os/exec"
	"testing"
)

const (
	gitExecutableNameConstant           = "git"
	gitExecutableMissingMessageConstant = "git executable not available"
)

// RequireGitExecutable skips the test when git cannot be found on PATH.
func RequireGitExecutable(testingInstance testing.TB) {
	testingInstance.Helper()
	if _, lookupError := exec.LookPath(gitExecutableNameConstant); lookupError != nil {
		testingInstance.Skip(gitExecutableMissingMessageConstant)
	}
}

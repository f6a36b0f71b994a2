package vcs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/eolcdt/internal/vcs"
)

func TestCollaboratorUnavailableError(testInstance *testing.T) {
	cause := errors.New("exit status 128")
	collaboratorError := vcs.NewCollaboratorUnavailableError("merge-base", cause, "main", "feature")

	require.ErrorIs(testInstance, collaboratorError, vcs.ErrCollaboratorUnavailable)
	require.ErrorIs(testInstance, collaboratorError, cause)
	require.Equal(testInstance, "merge-base main feature failed: exit status 128", collaboratorError.Error())

	wrapped := fmt.Errorf("analysis failed: %w", collaboratorError)
	var typedError vcs.CollaboratorUnavailableError
	require.True(testInstance, errors.As(wrapped, &typedError))
	require.Equal(testInstance, []string{"main", "feature"}, typedError.Arguments)
}

func TestPathAnomalies(testInstance *testing.T) {
	notFound := vcs.PathError{Revision: "abc123", Path: "a.txt", Err: vcs.ErrPathNotFound}
	notAFile := vcs.PathError{Revision: "abc123", Path: "sub", Err: vcs.ErrNotAFile}

	require.True(testInstance, vcs.IsPathAnomaly(notFound))
	require.True(testInstance, vcs.IsPathAnomaly(fmt.Errorf("wrapped: %w", notAFile)))
	require.False(testInstance, vcs.IsPathAnomaly(vcs.ErrNoCommonAncestor))
	require.False(testInstance, vcs.IsPathAnomaly(vcs.NewCollaboratorUnavailableError("show", errors.New("boom"))))
	require.Equal(testInstance, "a.txt at abc123: path not found", notFound.Error())
}

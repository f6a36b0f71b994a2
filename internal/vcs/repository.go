package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/eolcdt/internal/changeset"
)

const (
	noCommonAncestorMessageConstant        = "revisions share no common ancestor"
	pathNotFoundMessageConstant            = "path not found"
	notAFileMessageConstant                = "path does not refer to a file"
	collaboratorUnavailableMessageConstant = "version control collaborator unavailable"
	collaboratorFailureTemplateConstant    = "%s %s failed: %v"
	collaboratorArgumentsSeparatorConstant = " "
	pathErrorTemplateConstant              = "%s at %s: %v"
)

// ErrNoCommonAncestor indicates two revisions share no history.
var ErrNoCommonAncestor = errors.New(noCommonAncestorMessageConstant)

// ErrPathNotFound indicates a path does not exist at the requested revision.
var ErrPathNotFound = errors.New(pathNotFoundMessageConstant)

// ErrNotAFile indicates a path refers to a directory, submodule, or other non-blob entry.
var ErrNotAFile = errors.New(notAFileMessageConstant)

// ErrCollaboratorUnavailable matches every CollaboratorUnavailableError via errors.Is.
var ErrCollaboratorUnavailable = errors.New(collaboratorUnavailableMessageConstant)

// Repository exposes the read-only operations required to detect line-ending drift.
type Repository interface {
	MergeBase(executionContext context.Context, firstRevision string, secondRevision string) (string, error)
	DiffNameStatus(executionContext context.Context, fromRevision string, toRevision string) ([]changeset.Record, error)
	ShowBlob(executionContext context.Context, revision string, path string, maxBytes int64) ([]byte, error)
}

// CollaboratorUnavailableError reports that the collaborator failed to run or returned an
// unexpected failure for an operation whose success was required.
type CollaboratorUnavailableError struct {
	Operation string
	Arguments []string
	Cause     error
}

// Error names the failed operation and its arguments.
func (collaboratorError CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf(collaboratorFailureTemplateConstant, collaboratorError.Operation, strings.Join(collaboratorError.Arguments, collaboratorArgumentsSeparatorConstant), collaboratorError.Cause)
}

// Unwrap exposes the underlying cause.
func (collaboratorError CollaboratorUnavailableError) Unwrap() error {
	return collaboratorError.Cause
}

// Is matches ErrCollaboratorUnavailable.
func (collaboratorError CollaboratorUnavailableError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}

// NewCollaboratorUnavailableError builds a CollaboratorUnavailableError.
func NewCollaboratorUnavailableError(operation string, cause error, arguments ...string) error {
	return CollaboratorUnavailableError{Operation: operation, Arguments: append([]string{}, arguments...), Cause: cause}
}

// PathError attaches the revision and path to ErrPathNotFound or ErrNotAFile.
type PathError struct {
	Revision string
	Path     string
	Err      error
}

// Error describes the path anomaly.
func (pathError PathError) Error() string {
	return fmt.Sprintf(pathErrorTemplateConstant, pathError.Path, pathError.Revision, pathError.Err)
}

// Unwrap exposes the sentinel error.
func (pathError PathError) Unwrap() error {
	return pathError.Err
}

// IsPathAnomaly reports whether the error is a per-path anomaly that must not abort a run.
func IsPathAnomaly(err error) bool {
	return errors.Is(err, ErrPathNotFound) || errors.Is(err, ErrNotAFile)
}

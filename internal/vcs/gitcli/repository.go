package gitcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/eolcdt/internal/changeset"
	"github.com/temirov/eolcdt/internal/execshell"
	"github.com/temirov/eolcdt/internal/vcs"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	gitMergeBaseSubcommandConstant           = "merge-base"
	gitDiffSubcommandConstant                = "diff"
	gitNameStatusFlagConstant                = "--name-status"
	gitNullTerminatedFlagConstant            = "-z"
	gitDetectRenamesFlagConstant             = "-M"
	gitPathSeparatorArgumentConstant         = "--"
	gitCatFileSubcommandConstant             = "cat-file"
	gitCatFileTypeFlagConstant               = "-t"
	gitCatFileBlobTypeConstant               = "blob"
	gitObjectSpecificationTemplateConstant   = "%s:%s"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue = "0"
	gitMergeBaseOperationConstant            = "git merge-base"
	gitDiffOperationConstant                 = "git diff"
	gitObjectTypeOperationConstant           = "git cat-file -t"
	gitBlobOperationConstant                 = "git cat-file blob"
	gitUnexpectedObjectTypeTemplateConstant  = "%w: object type %s"
	noCommonAncestorTemplateConstant         = "%w: %s and %s"
	nameStatusParseFailureTemplateConstant   = "failed to parse changes between %s and %s: %w"
	mergeBaseNoAncestorExitCodeConstant      = 1
	objectMissingExitCodeConstant            = 128
)

// ErrGitExecutorNotConfigured indicates the repository was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Repository answers vcs.Repository queries by invoking git in a working directory.
type Repository struct {
	executor         GitExecutor
	workingDirectory string
}

// NewRepository constructs a Repository rooted at workingDirectory. An empty directory
// runs git in the current process directory.
func NewRepository(executor GitExecutor, workingDirectory string) (*Repository, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Repository{executor: executor, workingDirectory: strings.TrimSpace(workingDirectory)}, nil
}

// MergeBase resolves the best common ancestor of the two revisions.
func (repository *Repository) MergeBase(executionContext context.Context, firstRevision string, secondRevision string) (string, error) {
	executionResult, executionError := repository.execute(executionContext, execshell.CommandDetails{
		Arguments: []string{gitMergeBaseSubcommandConstant, firstRevision, secondRevision},
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) &&
			failedError.Result.ExitCode == mergeBaseNoAncestorExitCodeConstant &&
			len(strings.TrimSpace(failedError.Result.StandardOutput)) == 0 {
			return "", fmt.Errorf(noCommonAncestorTemplateConstant, vcs.ErrNoCommonAncestor, firstRevision, secondRevision)
		}
		return "", vcs.NewCollaboratorUnavailableError(gitMergeBaseOperationConstant, executionError, firstRevision, secondRevision)
	}

	mergeBase := strings.TrimSpace(executionResult.StandardOutput)
	if len(mergeBase) == 0 {
		return "", fmt.Errorf(noCommonAncestorTemplateConstant, vcs.ErrNoCommonAncestor, firstRevision, secondRevision)
	}
	return mergeBase, nil
}

// DiffNameStatus lists the change records between two revisions with rename detection enabled.
func (repository *Repository) DiffNameStatus(executionContext context.Context, fromRevision string, toRevision string) ([]changeset.Record, error) {
	executionResult, executionError := repository.execute(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitDiffSubcommandConstant,
			gitNameStatusFlagConstant,
			gitNullTerminatedFlagConstant,
			gitDetectRenamesFlagConstant,
			fromRevision,
			toRevision,
			gitPathSeparatorArgumentConstant,
		},
	})
	if executionError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(gitDiffOperationConstant, executionError, fromRevision, toRevision)
	}

	records, parseError := changeset.ParseNameStatus(executionResult.StandardOutput)
	if parseError != nil {
		return nil, fmt.Errorf(nameStatusParseFailureTemplateConstant, fromRevision, toRevision, parseError)
	}
	return records, nil
}

// ShowBlob returns at most maxBytes of the blob stored at path in revision. The object type
// is inspected first so that directories, submodules and missing paths surface as
// vcs.PathError values instead of opaque git failures.
func (repository *Repository) ShowBlob(executionContext context.Context, revision string, path string, maxBytes int64) ([]byte, error) {
	objectSpecification := fmt.Sprintf(gitObjectSpecificationTemplateConstant, revision, path)

	typeResult, typeError := repository.execute(executionContext, execshell.CommandDetails{
		Arguments: []string{gitCatFileSubcommandConstant, gitCatFileTypeFlagConstant, objectSpecification},
	})
	if typeError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(typeError, &failedError) && failedError.Result.ExitCode == objectMissingExitCodeConstant {
			return nil, vcs.PathError{Revision: revision, Path: path, Err: vcs.ErrPathNotFound}
		}
		return nil, vcs.NewCollaboratorUnavailableError(gitObjectTypeOperationConstant, typeError, objectSpecification)
	}

	objectType := strings.TrimSpace(typeResult.StandardOutput)
	if objectType != gitCatFileBlobTypeConstant {
		return nil, vcs.PathError{Revision: revision, Path: path, Err: fmt.Errorf(gitUnexpectedObjectTypeTemplateConstant, vcs.ErrNotAFile, objectType)}
	}

	blobResult, blobError := repository.execute(executionContext, execshell.CommandDetails{
		Arguments:              []string{gitCatFileSubcommandConstant, gitCatFileBlobTypeConstant, objectSpecification},
		MaxStandardOutputBytes: maxBytes,
	})
	if blobError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(gitBlobOperationConstant, blobError, objectSpecification)
	}

	return []byte(blobResult.StandardOutput), nil
}

func (repository *Repository) execute(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	details.WorkingDirectory = repository.workingDirectory
	details.EnvironmentVariables = map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue}
	return repository.executor.ExecuteGit(executionContext, details)
}

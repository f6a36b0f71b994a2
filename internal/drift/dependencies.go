package drift

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/eolcdt/internal/execshell"
	"github.com/temirov/eolcdt/internal/ui"
	"github.com/temirov/eolcdt/internal/vcs"
	"github.com/temirov/eolcdt/internal/vcs/gitcli"
	"github.com/temirov/eolcdt/internal/vcs/gogit"
)

const (
	backendGitExecutableConstant       = "git"
	backendGoGitConstant               = "go-git"
	unsupportedBackendTemplateConstant = "unsupported backend %q (expected git or go-git)"
)

// Backend selects the vcs.Repository implementation.
type Backend string

// Supported backends.
const (
	BackendGitExecutable Backend = Backend(backendGitExecutableConstant)
	BackendGoGit         Backend = Backend(backendGoGitConstant)
)

// BackendChoices lists the accepted backend names.
func BackendChoices() []string {
	return []string{backendGitExecutableConstant, backendGoGitConstant}
}

// ParseBackend maps a case-insensitive name onto a Backend.
func ParseBackend(value string) (Backend, error) {
	normalized := Backend(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case BackendGitExecutable, BackendGoGit:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedBackendTemplateConstant, value)
	}
}

// RepositoryRequest describes the collaborator a command run needs.
type RepositoryRequest struct {
	Backend              Backend
	RepositoryPath       string
	Logger               *zap.Logger
	ConsoleLogger        *zap.Logger
	HumanReadableLogging bool
}

// RepositoryFactory constructs the collaborator for a command run.
type RepositoryFactory func(request RepositoryRequest) (vcs.Repository, error)

// ResolveRepository builds the collaborator selected by the request. The git backend narrates
// each invocation on the console when human-readable logging is enabled.
func ResolveRepository(request RepositoryRequest) (vcs.Repository, error) {
	logger := request.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch request.Backend {
	case BackendGoGit:
		repository, openError := gogit.Open(request.RepositoryPath)
		if openError != nil {
			return nil, openError
		}
		return repository, nil
	case BackendGitExecutable:
		observers := make([]execshell.CommandEventObserver, 0, 1)
		if request.HumanReadableLogging {
			consoleLogger := request.ConsoleLogger
			if consoleLogger == nil {
				consoleLogger = logger
			}
			observers = append(observers, ui.NewConsoleCommandEventLogger(consoleLogger))
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
		if executorError != nil {
			return nil, executorError
		}
		repository, repositoryError := gitcli.NewRepository(shellExecutor, request.RepositoryPath)
		if repositoryError != nil {
			return nil, repositoryError
		}
		return repository, nil
	default:
		return nil, fmt.Errorf(unsupportedBackendTemplateConstant, request.Backend)
	}
}

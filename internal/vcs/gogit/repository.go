package gogit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/temirov/eolcdt/internal/changeset"
	"github.com/temirov/eolcdt/internal/eol"
	"github.com/temirov/eolcdt/internal/vcs"
)

const (
	repositoryMissingMessageConstant      = "go-git repository not configured"
	openRepositoryFailureTemplateConstant = "failed to open repository at %s: %w"
	noCommonAncestorTemplateConstant      = "%w: %s and %s"
	unexpectedEntryModeTemplateConstant   = "%w: mode %s"
	resolveOperationConstant              = "go-git resolve revision"
	mergeBaseOperationConstant            = "go-git merge-base"
	diffOperationConstant                 = "go-git diff-tree"
	blobOperationConstant                 = "go-git read blob"
)

// ErrRepositoryNotConfigured indicates the repository was constructed without a go-git handle.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// Repository answers vcs.Repository queries against a go-git repository. Access to the
// underlying storage is serialized because go-git storers are not safe for concurrent use.
type Repository struct {
	mutex      sync.Mutex
	repository *git.Repository
}

// Open locates the repository containing path, walking up to the enclosing .git directory.
func Open(path string) (*Repository, error) {
	repository, openError := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryFailureTemplateConstant, path, openError)
	}
	return NewRepository(repository)
}

// NewRepository wraps an already opened go-git repository.
func NewRepository(repository *git.Repository) (*Repository, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return &Repository{repository: repository}, nil
}

// MergeBase resolves the best common ancestor of the two revisions. When several
// ancestors qualify the one with the lowest hash is returned so runs are repeatable.
func (repository *Repository) MergeBase(executionContext context.Context, firstRevision string, secondRevision string) (string, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if contextError := executionContext.Err(); contextError != nil {
		return "", vcs.NewCollaboratorUnavailableError(mergeBaseOperationConstant, contextError, firstRevision, secondRevision)
	}

	firstCommit, firstError := repository.resolveCommit(firstRevision)
	if firstError != nil {
		return "", firstError
	}
	secondCommit, secondError := repository.resolveCommit(secondRevision)
	if secondError != nil {
		return "", secondError
	}

	ancestors, mergeBaseError := firstCommit.MergeBase(secondCommit)
	if mergeBaseError != nil {
		return "", vcs.NewCollaboratorUnavailableError(mergeBaseOperationConstant, mergeBaseError, firstRevision, secondRevision)
	}
	if len(ancestors) == 0 {
		return "", fmt.Errorf(noCommonAncestorTemplateConstant, vcs.ErrNoCommonAncestor, firstRevision, secondRevision)
	}

	ancestorHashes := make([]string, 0, len(ancestors))
	for _, ancestor := range ancestors {
		ancestorHashes = append(ancestorHashes, ancestor.Hash.String())
	}
	sort.Strings(ancestorHashes)
	return ancestorHashes[0], nil
}

// DiffNameStatus lists the change records between two revisions with rename detection enabled.
func (repository *Repository) DiffNameStatus(executionContext context.Context, fromRevision string, toRevision string) ([]changeset.Record, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	fromTree, fromError := repository.resolveTree(fromRevision)
	if fromError != nil {
		return nil, fromError
	}
	toTree, toError := repository.resolveTree(toRevision)
	if toError != nil {
		return nil, toError
	}

	changes, diffError := object.DiffTreeWithOptions(executionContext, fromTree, toTree, object.DefaultDiffTreeOptions)
	if diffError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(diffOperationConstant, diffError, fromRevision, toRevision)
	}

	records := make([]changeset.Record, 0, len(changes))
	for _, change := range changes {
		record, recordError := recordFromChange(change)
		if recordError != nil {
			return nil, vcs.NewCollaboratorUnavailableError(diffOperationConstant, recordError, fromRevision, toRevision)
		}
		records = append(records, record)
	}
	return records, nil
}

// ShowBlob returns at most maxBytes of the blob stored at path in revision; the rest of the
// blob is drained from the object reader.
func (repository *Repository) ShowBlob(executionContext context.Context, revision string, path string, maxBytes int64) ([]byte, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	if contextError := executionContext.Err(); contextError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(blobOperationConstant, contextError, revision, path)
	}

	tree, treeError := repository.resolveTree(revision)
	if treeError != nil {
		return nil, treeError
	}

	entry, entryError := tree.FindEntry(path)
	if entryError != nil {
		if errors.Is(entryError, object.ErrEntryNotFound) || errors.Is(entryError, object.ErrDirectoryNotFound) || errors.Is(entryError, object.ErrFileNotFound) {
			return nil, vcs.PathError{Revision: revision, Path: path, Err: vcs.ErrPathNotFound}
		}
		return nil, vcs.NewCollaboratorUnavailableError(blobOperationConstant, entryError, revision, path)
	}

	if entry.Mode == filemode.Dir || entry.Mode == filemode.Submodule {
		return nil, vcs.PathError{Revision: revision, Path: path, Err: fmt.Errorf(unexpectedEntryModeTemplateConstant, vcs.ErrNotAFile, entry.Mode)}
	}

	blob, blobError := repository.repository.BlobObject(entry.Hash)
	if blobError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(blobOperationConstant, blobError, revision, path)
	}

	blobReader, readerError := blob.Reader()
	if readerError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(blobOperationConstant, readerError, revision, path)
	}
	defer blobReader.Close()

	content, readError := eol.ReadCapped(blobReader, maxBytes)
	if readError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(blobOperationConstant, readError, revision, path)
	}
	return content, nil
}

func (repository *Repository) resolveCommit(revision string) (*object.Commit, error) {
	hash, resolveError := repository.repository.ResolveRevision(plumbing.Revision(revision))
	if resolveError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(resolveOperationConstant, resolveError, revision)
	}
	commit, commitError := repository.repository.CommitObject(*hash)
	if commitError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(resolveOperationConstant, commitError, revision)
	}
	return commit, nil
}

func (repository *Repository) resolveTree(revision string) (*object.Tree, error) {
	commit, commitError := repository.resolveCommit(revision)
	if commitError != nil {
		return nil, commitError
	}
	tree, treeError := commit.Tree()
	if treeError != nil {
		return nil, vcs.NewCollaboratorUnavailableError(resolveOperationConstant, treeError, revision)
	}
	return tree, nil
}

func recordFromChange(change *object.Change) (changeset.Record, error) {
	action, actionError := change.Action()
	if actionError != nil {
		return changeset.Record{}, actionError
	}

	switch action {
	case merkletrie.Insert:
		return changeset.Record{Path: change.To.Name, Status: changeset.StatusAdded}, nil
	case merkletrie.Delete:
		return changeset.Record{Path: change.From.Name, Status: changeset.StatusDeleted}, nil
	case merkletrie.Modify:
		if change.From.Name != change.To.Name {
			return changeset.Record{Path: change.To.Name, PreviousPath: change.From.Name, Status: changeset.StatusRenamed}, nil
		}
		if entryKind(change.From.TreeEntry.Mode) != entryKind(change.To.TreeEntry.Mode) {
			return changeset.Record{Path: change.To.Name, Status: changeset.StatusTypeChanged}, nil
		}
		return changeset.Record{Path: change.To.Name, Status: changeset.StatusModified}, nil
	default:
		return changeset.Record{Path: change.To.Name, Status: changeset.StatusOther}, nil
	}
}

type treeEntryKind int

const (
	treeEntryKindRegular treeEntryKind = iota
	treeEntryKindSymlink
	treeEntryKindSubmodule
	treeEntryKindOther
)

func entryKind(mode filemode.FileMode) treeEntryKind {
	switch mode {
	case filemode.Regular, filemode.Executable, filemode.Deprecated:
		return treeEntryKindRegular
	case filemode.Symlink:
		return treeEntryKindSymlink
	case filemode.Submodule:
		return treeEntryKindSubmodule
	default:
		return treeEntryKindOther
	}
}

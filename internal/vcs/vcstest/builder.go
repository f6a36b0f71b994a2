package vcstest

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

const (
	fixtureAuthorNameConstant  = "EOL Fixture"
	fixtureAuthorEmailConstant = "fixture@example.com"
	fixtureFileModeConstant    = 0o644
)

var fixtureEpoch = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

// Builder commits file snapshots onto branches of a go-git repository.
type Builder struct {
	testingInstance testing.TB
	Repository      *git.Repository
	Directory       string
	worktree        *git.Worktree
	commitCount     int
}

// NewMemoryBuilder initializes a repository backed by in-memory storage and worktree.
func NewMemoryBuilder(testingInstance testing.TB) *Builder {
	testingInstance.Helper()
	repository, initError := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(testingInstance, initError)
	return newBuilder(testingInstance, repository, "")
}

// NewDiskBuilder initializes a repository in a temporary directory so that the git
// executable can read it as well.
func NewDiskBuilder(testingInstance testing.TB) *Builder {
	testingInstance.Helper()
	directory := testingInstance.TempDir()
	repository, initError := git.PlainInit(directory, false)
	require.NoError(testingInstance, initError)
	return newBuilder(testingInstance, repository, directory)
}

func newBuilder(testingInstance testing.TB, repository *git.Repository, directory string) *Builder {
	worktree, worktreeError := repository.Worktree()
	require.NoError(testingInstance, worktreeError)
	return &Builder{testingInstance: testingInstance, Repository: repository, Directory: directory, worktree: worktree}
}

// Commit writes the files onto the current branch and commits them. A nil content removes the path.
func (builder *Builder) Commit(message string, files map[string][]byte) plumbing.Hash {
	builder.testingInstance.Helper()
	for path, content := range files {
		if content == nil {
			_, removeError := builder.worktree.Remove(path)
			require.NoError(builder.testingInstance, removeError)
			continue
		}
		require.NoError(builder.testingInstance, util.WriteFile(builder.worktree.Filesystem, path, content, fixtureFileModeConstant))
		_, addError := builder.worktree.Add(path)
		require.NoError(builder.testingInstance, addError)
	}

	builder.commitCount++
	commitHash, commitError := builder.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  fixtureAuthorNameConstant,
			Email: fixtureAuthorEmailConstant,
			When:  fixtureEpoch.Add(time.Duration(builder.commitCount) * time.Minute),
		},
		AllowEmptyCommits: true,
	})
	require.NoError(builder.testingInstance, commitError)
	return commitHash
}

// Branch creates a branch at the given commit and checks it out.
func (builder *Builder) Branch(name string, from plumbing.Hash) {
	builder.testingInstance.Helper()
	require.NoError(builder.testingInstance, builder.worktree.Checkout(&git.CheckoutOptions{
		Hash:   from,
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
		Force:  true,
	}))
}

// Orphan points HEAD at an unborn branch so the next commit has no parent.
func (builder *Builder) Orphan(name string) {
	builder.testingInstance.Helper()
	headReference := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(name))
	require.NoError(builder.testingInstance, builder.Repository.Storer.SetReference(headReference))
}

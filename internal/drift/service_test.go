package drift_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/eolcdt/internal/changeset"
	"github.com/temirov/eolcdt/internal/drift"
	"github.com/temirov/eolcdt/internal/eol"
	"github.com/temirov/eolcdt/internal/vcs"
	"github.com/temirov/eolcdt/internal/vcs/gogit"
	"github.com/temirov/eolcdt/internal/vcs/vcstest"
)

const (
	testMergeBaseConstant = "base0000"
	testBranch1Constant   = "feature"
	testBranch2Constant   = "main"
)

type blobKey struct {
	revision string
	path     string
}

type stubRepository struct {
	mergeBase      string
	mergeBaseError error
	records        map[string][]changeset.Record
	diffError      error
	blobs          map[blobKey][]byte
	blobErrors     map[blobKey]error
	blobDelay      time.Duration

	mutex             sync.Mutex
	fetched           []blobKey
	maxBytesObserved  []int64
	activeFetches     atomic.Int32
	peakActiveFetches atomic.Int32
	deadlineObserved  atomic.Bool
}

func (repository *stubRepository) MergeBase(_ context.Context, _ string, _ string) (string, error) {
	if repository.mergeBaseError != nil {
		return "", repository.mergeBaseError
	}
	return repository.mergeBase, nil
}

func (repository *stubRepository) DiffNameStatus(_ context.Context, _ string, toRevision string) ([]changeset.Record, error) {
	if repository.diffError != nil {
		return nil, repository.diffError
	}
	return repository.records[toRevision], nil
}

func (repository *stubRepository) ShowBlob(executionContext context.Context, revision string, path string, maxBytes int64) ([]byte, error) {
	key := blobKey{revision: revision, path: path}

	active := repository.activeFetches.Add(1)
	defer repository.activeFetches.Add(-1)
	for {
		peak := repository.peakActiveFetches.Load()
		if active <= peak || repository.peakActiveFetches.CompareAndSwap(peak, active) {
			break
		}
	}
	if _, hasDeadline := executionContext.Deadline(); hasDeadline {
		repository.deadlineObserved.Store(true)
	}

	repository.mutex.Lock()
	repository.fetched = append(repository.fetched, key)
	repository.maxBytesObserved = append(repository.maxBytesObserved, maxBytes)
	repository.mutex.Unlock()

	if repository.blobDelay > 0 {
		select {
		case <-time.After(repository.blobDelay):
		case <-executionContext.Done():
			return nil, executionContext.Err()
		}
	}

	if failure, exists := repository.blobErrors[key]; exists {
		return nil, failure
	}
	content, exists := repository.blobs[key]
	if !exists {
		return nil, vcs.PathError{Revision: revision, Path: path, Err: vcs.ErrPathNotFound}
	}
	return content, nil
}

func (repository *stubRepository) fetchedKeys() []blobKey {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return append([]blobKey{}, repository.fetched...)
}

func modifiedRecords(paths ...string) []changeset.Record {
	records := make([]changeset.Record, 0, len(paths))
	for _, path := range paths {
		records = append(records, changeset.Record{Path: path, Status: changeset.StatusModified})
	}
	return records
}

func newStubRepository(paths []string, blobs map[blobKey][]byte) *stubRepository {
	return &stubRepository{
		mergeBase: testMergeBaseConstant,
		records: map[string][]changeset.Record{
			testBranch1Constant: modifiedRecords(paths...),
			testBranch2Constant: modifiedRecords(paths...),
		},
		blobs: blobs,
	}
}

func newTestService(testInstance *testing.T, repository vcs.Repository, logger *zap.Logger, options drift.Options) *drift.Service {
	testInstance.Helper()
	service, creationError := drift.NewService(drift.ServiceDependencies{Repository: repository, Logger: logger}, options)
	require.NoError(testInstance, creationError)
	return service
}

func defaultRequest() drift.Request {
	return drift.Request{Treeish1: testBranch1Constant, Treeish2: testBranch2Constant}
}

func TestNewServiceRequiresRepository(testInstance *testing.T) {
	service, creationError := drift.NewService(drift.ServiceDependencies{}, drift.DefaultOptions())
	require.ErrorIs(testInstance, creationError, drift.ErrRepositoryNotConfigured)
	require.Nil(testInstance, service)
}

func TestAnalyzeClassifiesCommonPaths(testInstance *testing.T) {
	testCases := []struct {
		name            string
		base            []byte
		branch1         []byte
		branch2         []byte
		expectedOutcome eol.Outcome
		expectedLine    string
	}{
		{
			name:            "no_change",
			base:            []byte("a\nb\n"),
			branch1:         []byte("a\nb\nc\n"),
			branch2:         []byte("a\n"),
			expectedOutcome: eol.Outcome{Kind: eol.OutcomeNoChange, Base: eol.ClassificationLF, Branch1: eol.ClassificationLF, Branch2: eol.ClassificationLF},
			expectedLine:    "file.txt: No change (LF)",
		},
		{
			name:            "changed_on_branch1",
			base:            []byte("a\nb\n"),
			branch1:         []byte("a\r\nb\r\n"),
			branch2:         []byte("a\nb\nc\n"),
			expectedOutcome: eol.Outcome{Kind: eol.OutcomeChangedOnBranch1, Base: eol.ClassificationLF, Branch1: eol.ClassificationCRLF, Branch2: eol.ClassificationLF},
			expectedLine:    "file.txt: Changed on branch1 (LF -> CRLF)",
		},
		{
			name:            "changed_on_branch2",
			base:            []byte("a\r\n"),
			branch1:         []byte("a\r\nb\r\n"),
			branch2:         []byte("a\n"),
			expectedOutcome: eol.Outcome{Kind: eol.OutcomeChangedOnBranch2, Base: eol.ClassificationCRLF, Branch1: eol.ClassificationCRLF, Branch2: eol.ClassificationLF},
			expectedLine:    "file.txt: Changed on branch2 (CRLF -> LF)",
		},
		{
			name:            "changed_on_both_distinct",
			base:            []byte("a\n"),
			branch1:         []byte("a\r\n"),
			branch2:         []byte("a\nb\r\n"),
			expectedOutcome: eol.Outcome{Kind: eol.OutcomeChangedOnBoth, Base: eol.ClassificationLF, Branch1: eol.ClassificationCRLF, Branch2: eol.ClassificationMixed},
			expectedLine:    "file.txt: Changed on both branches (LF -> CRLF on branch1, LF -> Mixed on branch2)",
		},
		{
			name:            "branch_becomes_binary",
			base:            []byte("a\n"),
			branch1:         []byte("a\x00\n"),
			branch2:         []byte("a\n"),
			expectedOutcome: eol.Outcome{Kind: eol.OutcomeChangedOnBranch1, Base: eol.ClassificationLF, Branch1: eol.ClassificationBinary, Branch2: eol.ClassificationLF},
			expectedLine:    "file.txt: Changed on branch1 (LF -> Binary)",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			repository := newStubRepository([]string{"file.txt"}, map[blobKey][]byte{
				{revision: testMergeBaseConstant, path: "file.txt"}: testCase.base,
				{revision: testBranch1Constant, path: "file.txt"}:   testCase.branch1,
				{revision: testBranch2Constant, path: "file.txt"}:   testCase.branch2,
			})
			service := newTestService(subtest, repository, nil, drift.DefaultOptions())

			report, analysisError := service.Analyze(context.Background(), defaultRequest())
			require.NoError(subtest, analysisError)
			require.Equal(subtest, testMergeBaseConstant, report.MergeBase)
			require.Equal(subtest, testBranch1Constant, report.Treeish1)
			require.Equal(subtest, testBranch2Constant, report.Treeish2)
			require.Len(subtest, report.Entries, 1)
			require.Equal(subtest, testCase.expectedOutcome, report.Entries[0].Outcome)
			require.Equal(subtest, testCase.expectedLine, report.Entries[0].Describe())
		})
	}
}

func TestAnalyzeSkipsBranchFetchesForTerminalBase(testInstance *testing.T) {
	testCases := []struct {
		name         string
		base         []byte
		expectedKind eol.OutcomeKind
		expectedLine string
	}{
		{name: "binary", base: []byte("x\x00y\n"), expectedKind: eol.OutcomeBinaryAtBase, expectedLine: "file.txt is binary on merge base"},
		{name: "mixed", base: []byte("x\ny\r\n"), expectedKind: eol.OutcomeMixedAtBase, expectedLine: "file.txt has mixed EOL on merge base"},
		{name: "unknown", base: []byte("no terminators"), expectedKind: eol.OutcomeUnknownAtBase, expectedLine: "file.txt has unknown EOL on merge base"},
		{name: "empty", base: []byte{}, expectedKind: eol.OutcomeUnknownAtBase, expectedLine: "file.txt has unknown EOL on merge base"},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			repository := newStubRepository([]string{"file.txt"}, map[blobKey][]byte{
				{revision: testMergeBaseConstant, path: "file.txt"}: testCase.base,
				{revision: testBranch1Constant, path: "file.txt"}:   []byte("a\r\n"),
				{revision: testBranch2Constant, path: "file.txt"}:   []byte("a\r\n"),
			})
			service := newTestService(subtest, repository, nil, drift.DefaultOptions())

			report, analysisError := service.Analyze(context.Background(), defaultRequest())
			require.NoError(subtest, analysisError)
			require.Len(subtest, report.Entries, 1)
			require.Equal(subtest, testCase.expectedKind, report.Entries[0].Outcome.Kind)
			require.Equal(subtest, testCase.expectedLine, report.Entries[0].Describe())
			require.Equal(subtest, []blobKey{{revision: testMergeBaseConstant, path: "file.txt"}}, repository.fetchedKeys())
		})
	}
}

func TestAnalyzeReportsPathAnomaliesAsUnknown(testInstance *testing.T) {
	core, observedLogs := observer.New(zapcore.WarnLevel)
	repository := newStubRepository([]string{"dir", "gone.txt", "ok.txt"}, map[blobKey][]byte{
		{revision: testMergeBaseConstant, path: "ok.txt"}:   []byte("a\n"),
		{revision: testBranch1Constant, path: "ok.txt"}:     []byte("a\n"),
		{revision: testBranch2Constant, path: "ok.txt"}:     []byte("a\n"),
		{revision: testMergeBaseConstant, path: "gone.txt"}: []byte("a\n"),
	})
	repository.blobErrors = map[blobKey]error{
		{revision: testMergeBaseConstant, path: "dir"}: vcs.PathError{Revision: testMergeBaseConstant, Path: "dir", Err: vcs.ErrNotAFile},
	}
	service := newTestService(testInstance, repository, zap.New(core), drift.DefaultOptions())

	report, analysisError := service.Analyze(context.Background(), defaultRequest())
	require.NoError(testInstance, analysisError)
	require.Len(testInstance, report.Entries, 3)

	require.Equal(testInstance, "dir", report.Entries[0].Path)
	require.Equal(testInstance, eol.OutcomeUnknownAtBase, report.Entries[0].Outcome.Kind)
	require.Contains(testInstance, report.Entries[0].Anomaly, vcs.ErrNotAFile.Error())
	require.Contains(testInstance, report.Entries[0].Describe(), "dir has unknown EOL on merge base (")

	require.Equal(testInstance, "gone.txt", report.Entries[1].Path)
	require.Equal(testInstance, eol.OutcomeUnknownAtBase, report.Entries[1].Outcome.Kind)
	require.Contains(testInstance, report.Entries[1].Anomaly, vcs.ErrPathNotFound.Error())

	require.Equal(testInstance, "ok.txt", report.Entries[2].Path)
	require.Equal(testInstance, eol.OutcomeNoChange, report.Entries[2].Outcome.Kind)
	require.Empty(testInstance, report.Entries[2].Anomaly)

	require.Equal(testInstance, 2, observedLogs.Len())
}

func TestAnalyzeAbortsOnCollaboratorFailures(testInstance *testing.T) {
	collaboratorFailure := vcs.NewCollaboratorUnavailableError("git cat-file", errors.New("exec: git not found"), "blob")

	testCases := []struct {
		name           string
		configure      func(repository *stubRepository)
		expectedErrors []error
		expectedText   string
	}{
		{
			name: "merge_base_missing",
			configure: func(repository *stubRepository) {
				repository.mergeBaseError = vcs.ErrNoCommonAncestor
			},
			expectedErrors: []error{vcs.ErrNoCommonAncestor},
			expectedText:   "failed to resolve merge base of feature and main",
		},
		{
			name: "diff_failure",
			configure: func(repository *stubRepository) {
				repository.diffError = collaboratorFailure
			},
			expectedErrors: []error{vcs.ErrCollaboratorUnavailable},
			expectedText:   "failed to select paths modified on both branches",
		},
		{
			name: "blob_failure",
			configure: func(repository *stubRepository) {
				repository.blobErrors = map[blobKey]error{{revision: testBranch2Constant, path: "file.txt"}: collaboratorFailure}
			},
			expectedErrors: []error{vcs.ErrCollaboratorUnavailable},
			expectedText:   "failed to read file.txt at main",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			repository := newStubRepository([]string{"file.txt"}, map[blobKey][]byte{
				{revision: testMergeBaseConstant, path: "file.txt"}: []byte("a\n"),
				{revision: testBranch1Constant, path: "file.txt"}:   []byte("a\n"),
				{revision: testBranch2Constant, path: "file.txt"}:   []byte("a\n"),
			})
			testCase.configure(repository)
			service := newTestService(subtest, repository, nil, drift.DefaultOptions())

			report, analysisError := service.Analyze(context.Background(), defaultRequest())
			require.Error(subtest, analysisError)
			for _, expectedError := range testCase.expectedErrors {
				require.ErrorIs(subtest, analysisError, expectedError)
			}
			require.ErrorContains(subtest, analysisError, testCase.expectedText)
			require.Empty(subtest, report.Entries)
		})
	}
}

func TestAnalyzeRequiresBothTreeishes(testInstance *testing.T) {
	service := newTestService(testInstance, newStubRepository(nil, nil), nil, drift.DefaultOptions())

	_, analysisError := service.Analyze(context.Background(), drift.Request{Treeish1: "feature", Treeish2: "  "})
	require.ErrorIs(testInstance, analysisError, drift.ErrTreeishRequired)
}

func TestAnalyzeSortsEntriesAndHonorsWorkerLimit(testInstance *testing.T) {
	paths := []string{"z.txt", "m.txt", "a.txt", "k.txt", "b.txt", "y.txt"}
	blobs := make(map[blobKey][]byte)
	for _, path := range paths {
		for _, revision := range []string{testMergeBaseConstant, testBranch1Constant, testBranch2Constant} {
			blobs[blobKey{revision: revision, path: path}] = []byte("line\n")
		}
	}
	repository := newStubRepository(paths, blobs)
	repository.blobDelay = 5 * time.Millisecond

	service := newTestService(testInstance, repository, nil, drift.Options{Workers: 2})

	report, analysisError := service.Analyze(context.Background(), defaultRequest())
	require.NoError(testInstance, analysisError)

	reportedPaths := make([]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		reportedPaths = append(reportedPaths, entry.Path)
	}
	require.Equal(testInstance, []string{"a.txt", "b.txt", "k.txt", "m.txt", "y.txt", "z.txt"}, reportedPaths)
	require.LessOrEqual(testInstance, repository.peakActiveFetches.Load(), int32(2))
	require.Len(testInstance, repository.fetchedKeys(), len(paths)*3)
}

func TestAnalyzeAppliesFetchOptions(testInstance *testing.T) {
	blobs := map[blobKey][]byte{
		{revision: testMergeBaseConstant, path: "file.txt"}: []byte("a\n"),
		{revision: testBranch1Constant, path: "file.txt"}:   []byte("a\n"),
		{revision: testBranch2Constant, path: "file.txt"}:   []byte("a\n"),
	}

	testInstance.Run("defaults", func(subtest *testing.T) {
		repository := newStubRepository([]string{"file.txt"}, blobs)
		service := newTestService(subtest, repository, nil, drift.Options{})

		_, analysisError := service.Analyze(context.Background(), defaultRequest())
		require.NoError(subtest, analysisError)
		require.False(subtest, repository.deadlineObserved.Load())
		for _, maxBytes := range repository.maxBytesObserved {
			require.Equal(subtest, drift.DefaultOptions().MaxBlobBytes, maxBytes)
		}
	})

	testInstance.Run("configured", func(subtest *testing.T) {
		repository := newStubRepository([]string{"file.txt"}, blobs)
		service := newTestService(subtest, repository, nil, drift.Options{MaxBlobBytes: 16, FetchTimeout: time.Minute})

		_, analysisError := service.Analyze(context.Background(), defaultRequest())
		require.NoError(subtest, analysisError)
		require.True(subtest, repository.deadlineObserved.Load())
		require.Equal(subtest, []int64{16, 16, 16}, repository.maxBytesObserved)
	})

	testInstance.Run("deadline_exceeded", func(subtest *testing.T) {
		repository := newStubRepository([]string{"file.txt"}, blobs)
		repository.blobDelay = time.Second
		service := newTestService(subtest, repository, nil, drift.Options{FetchTimeout: 10 * time.Millisecond})

		_, analysisError := service.Analyze(context.Background(), defaultRequest())
		require.ErrorIs(subtest, analysisError, context.DeadlineExceeded)
	})
}

func TestAnalyzeDriftScenarioThroughGoGit(testInstance *testing.T) {
	builder := vcstest.NewMemoryBuilder(testInstance)
	scenario := vcstest.DriftScenario(builder)
	repository, creationError := gogit.NewRepository(builder.Repository)
	require.NoError(testInstance, creationError)

	service := newTestService(testInstance, repository, nil, drift.DefaultOptions())

	report, analysisError := service.Analyze(context.Background(), drift.Request{
		Treeish1: vcstest.ScenarioBranch1NameConstant,
		Treeish2: vcstest.ScenarioBranch2NameConstant,
	})
	require.NoError(testInstance, analysisError)
	require.Equal(testInstance, scenario.Base.String(), report.MergeBase)

	lines := make([]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		lines = append(lines, entry.Describe())
	}
	require.Equal(testInstance, []string{
		"a.txt: Changed on branch1 (LF -> CRLF)",
		"b.bin is binary on merge base",
		"c.txt: Changed on branch2 (LF -> CRLF)",
		"docs/both.md: Changed on both branches (LF -> CRLF on branch1, LF -> CRLF on branch2)",
		"mixed.txt has mixed EOL on merge base",
		"same.txt: No change (LF)",
	}, lines)

	_, unrelatedError := service.Analyze(context.Background(), drift.Request{
		Treeish1: vcstest.ScenarioBranch1NameConstant,
		Treeish2: vcstest.ScenarioUnrelatedNameConstant,
	})
	require.ErrorIs(testInstance, unrelatedError, vcs.ErrNoCommonAncestor)
}

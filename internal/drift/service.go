package drift

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/eolcdt/internal/changeset"
	"github.com/temirov/eolcdt/internal/eol"
	"github.com/temirov/eolcdt/internal/vcs"
)

const (
	repositoryMissingMessageConstant   = "repository not configured"
	treeishRequiredMessageConstant     = "both treeish arguments must be provided"
	mergeBaseFailureTemplateConstant   = "failed to resolve merge base of %s and %s: %w"
	changeSetFailureTemplateConstant   = "failed to select paths modified on both branches: %w"
	blobFetchFailureTemplateConstant   = "failed to read %s at %s: %w"
	entryAnomalySuffixTemplateConstant = "%s (%s)"
	analysisCompletedMessageConstant   = "line-ending analysis completed"
	pathAnalyzedMessageConstant        = "path analyzed"
	pathAnomalyMessageConstant         = "path could not be read; reporting unknown EOL on merge base"
	logFieldMergeBaseConstant          = "merge_base"
	logFieldTreeish1Constant           = "treeish1"
	logFieldTreeish2Constant           = "treeish2"
	logFieldPathCountConstant          = "path_count"
	logFieldWorkerCountConstant        = "workers"
	logFieldPathConstant               = "path"
	logFieldRevisionConstant           = "revision"
	logFieldOutcomeConstant            = "outcome"
	defaultWorkerCountConstant         = 4
	defaultMaxBlobBytesConstant        = int64(8 << 20)
	defaultFetchTimeoutConstant        = 30 * time.Second
	minimumWorkerCountConstant         = 1
)

// ErrRepositoryNotConfigured indicates the service was constructed without a collaborator.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrTreeishRequired indicates one of the requested treeishes was empty.
var ErrTreeishRequired = errors.New(treeishRequiredMessageConstant)

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Repository vcs.Repository
	Logger     *zap.Logger
}

// Options tune how paths are fetched. A non-positive MaxBlobBytes falls back to the
// default cap, Workers below one means one worker, and a non-positive FetchTimeout
// disables the per-fetch deadline.
type Options struct {
	MaxBlobBytes int64
	Workers      int
	FetchTimeout time.Duration
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxBlobBytes: defaultMaxBlobBytesConstant,
		Workers:      defaultWorkerCountConstant,
		FetchTimeout: defaultFetchTimeoutConstant,
	}
}

// Request names the two branches that will be merged.
type Request struct {
	Treeish1 string
	Treeish2 string
}

// Entry is the verdict for one path. Anomaly carries the fetch failure that forced an
// unknown verdict, if any.
type Entry struct {
	Path    string
	Outcome eol.Outcome
	Anomaly string
}

// Describe renders the report line for the entry.
func (entry Entry) Describe() string {
	line := entry.Outcome.Describe(entry.Path)
	if len(entry.Anomaly) == 0 {
		return line
	}
	return fmt.Sprintf(entryAnomalySuffixTemplateConstant, line, entry.Anomaly)
}

// Report is the result of one analysis run. Entries are sorted by path.
type Report struct {
	MergeBase string
	Treeish1  string
	Treeish2  string
	Entries   []Entry
}

// Service coordinates merge-base resolution, change-set selection, and classification.
type Service struct {
	repository vcs.Repository
	selector   *changeset.Selector
	logger     *zap.Logger
	options    Options
}

// NewService constructs a Service from the provided dependencies and options.
func NewService(dependencies ServiceDependencies, options Options) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}

	selector, selectorError := changeset.NewSelector(dependencies.Repository)
	if selectorError != nil {
		return nil, selectorError
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repository: dependencies.Repository,
		selector:   selector,
		logger:     logger,
		options:    normalizeOptions(options),
	}, nil
}

// Analyze classifies every path modified on both treeishes relative to their merge base.
// Collaborator failures abort the run; missing paths and non-file entries only affect
// their own entry.
func (service *Service) Analyze(executionContext context.Context, request Request) (Report, error) {
	treeish1 := strings.TrimSpace(request.Treeish1)
	treeish2 := strings.TrimSpace(request.Treeish2)
	if len(treeish1) == 0 || len(treeish2) == 0 {
		return Report{}, ErrTreeishRequired
	}

	mergeBase, mergeBaseError := service.repository.MergeBase(executionContext, treeish1, treeish2)
	if mergeBaseError != nil {
		return Report{}, fmt.Errorf(mergeBaseFailureTemplateConstant, treeish1, treeish2, mergeBaseError)
	}

	commonPaths, selectionError := service.selector.CommonModifiedPaths(executionContext, mergeBase, treeish1, treeish2)
	if selectionError != nil {
		return Report{}, fmt.Errorf(changeSetFailureTemplateConstant, selectionError)
	}

	entries := make([]Entry, len(commonPaths))
	workGroup, workContext := errgroup.WithContext(executionContext)
	workGroup.SetLimit(service.options.Workers)

	for pathIndex, path := range commonPaths {
		workGroup.Go(func() error {
			entry, analysisError := service.analyzePath(workContext, mergeBase, treeish1, treeish2, path)
			if analysisError != nil {
				return analysisError
			}
			entries[pathIndex] = entry
			return nil
		})
	}

	if waitError := workGroup.Wait(); waitError != nil {
		return Report{}, waitError
	}

	sort.Slice(entries, func(leftIndex int, rightIndex int) bool {
		return entries[leftIndex].Path < entries[rightIndex].Path
	})

	service.logger.Info(
		analysisCompletedMessageConstant,
		zap.String(logFieldMergeBaseConstant, mergeBase),
		zap.String(logFieldTreeish1Constant, treeish1),
		zap.String(logFieldTreeish2Constant, treeish2),
		zap.Int(logFieldPathCountConstant, len(entries)),
		zap.Int(logFieldWorkerCountConstant, service.options.Workers),
	)

	return Report{MergeBase: mergeBase, Treeish1: treeish1, Treeish2: treeish2, Entries: entries}, nil
}

func (service *Service) analyzePath(executionContext context.Context, mergeBase string, treeish1 string, treeish2 string, path string) (Entry, error) {
	baseClassification, baseError := service.classify(executionContext, mergeBase, path)
	if baseError != nil {
		return service.failedEntry(path, mergeBase, baseError)
	}

	if outcome, terminal := eol.CompareBase(baseClassification); terminal {
		return service.entry(path, outcome), nil
	}

	branch1Classification, branch1Error := service.classify(executionContext, treeish1, path)
	if branch1Error != nil {
		return service.failedEntry(path, treeish1, branch1Error)
	}

	branch2Classification, branch2Error := service.classify(executionContext, treeish2, path)
	if branch2Error != nil {
		return service.failedEntry(path, treeish2, branch2Error)
	}

	return service.entry(path, eol.Compare(baseClassification, branch1Classification, branch2Classification)), nil
}

func (service *Service) classify(executionContext context.Context, revision string, path string) (eol.Classification, error) {
	fetchContext := executionContext
	if service.options.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchContext, cancel = context.WithTimeout(executionContext, service.options.FetchTimeout)
		defer cancel()
	}

	content, fetchError := service.repository.ShowBlob(fetchContext, revision, path, service.options.MaxBlobBytes)
	if fetchError != nil {
		return eol.ClassificationUnknown, fetchError
	}
	return eol.Classify(content), nil
}

func (service *Service) entry(path string, outcome eol.Outcome) Entry {
	service.logger.Debug(pathAnalyzedMessageConstant, zap.String(logFieldPathConstant, path), zap.Stringer(logFieldOutcomeConstant, outcome.Kind))
	return Entry{Path: path, Outcome: outcome}
}

// failedEntry turns a path anomaly into an unknown verdict for that path alone; any other
// fetch failure aborts the run.
func (service *Service) failedEntry(path string, revision string, fetchError error) (Entry, error) {
	if !vcs.IsPathAnomaly(fetchError) {
		return Entry{}, fmt.Errorf(blobFetchFailureTemplateConstant, path, revision, fetchError)
	}

	service.logger.Warn(
		pathAnomalyMessageConstant,
		zap.String(logFieldPathConstant, path),
		zap.String(logFieldRevisionConstant, revision),
		zap.Error(fetchError),
	)
	return Entry{
		Path:    path,
		Outcome: eol.Outcome{Kind: eol.OutcomeUnknownAtBase, Base: eol.ClassificationUnknown},
		Anomaly: fetchError.Error(),
	}, nil
}

func normalizeOptions(options Options) Options {
	defaults := DefaultOptions()
	normalized := options
	if normalized.MaxBlobBytes <= 0 {
		normalized.MaxBlobBytes = defaults.MaxBlobBytes
	}
	if normalized.Workers < minimumWorkerCountConstant {
		normalized.Workers = minimumWorkerCountConstant
	}
	return normalized
}

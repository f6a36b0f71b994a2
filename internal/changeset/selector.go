package changeset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v2"
	"github.com/samber/lo"
)

const (
	diffListerMissingMessageConstant   = "diff lister not configured"
	revisionRequiredMessageConstant    = "revision must be provided"
	diffFailureTemplateConstant        = "failed to list changes between %s and %s: %w"
	modifiedPathSetInitialSizeConstant = 64
)

// ErrDiffListerNotConfigured indicates the selector was built without a diff source.
var ErrDiffListerNotConfigured = errors.New(diffListerMissingMessageConstant)

// ErrRevisionRequired indicates one of the revisions was empty.
var ErrRevisionRequired = errors.New(revisionRequiredMessageConstant)

// DiffLister lists change records between two revisions.
type DiffLister interface {
	DiffNameStatus(executionContext context.Context, fromRevision string, toRevision string) ([]Record, error)
}

// Selector computes the paths modified on both branches relative to their merge base.
type Selector struct {
	diffLister DiffLister
}

// NewSelector constructs a Selector backed by the provided diff source.
func NewSelector(diffLister DiffLister) (*Selector, error) {
	if diffLister == nil {
		return nil, ErrDiffListerNotConfigured
	}
	return &Selector{diffLister: diffLister}, nil
}

// ModifiedPaths returns the paths whose status is modified between the two revisions,
// in the order the diff reported them and without duplicates.
func (selector *Selector) ModifiedPaths(executionContext context.Context, fromRevision string, toRevision string) ([]string, error) {
	if len(strings.TrimSpace(fromRevision)) == 0 || len(strings.TrimSpace(toRevision)) == 0 {
		return nil, ErrRevisionRequired
	}

	records, diffError := selector.diffLister.DiffNameStatus(executionContext, fromRevision, toRevision)
	if diffError != nil {
		return nil, fmt.Errorf(diffFailureTemplateConstant, fromRevision, toRevision, diffError)
	}

	modifiedPaths := lo.FilterMap(records, func(record Record, _ int) (string, bool) {
		return record.Path, record.Status == StatusModified
	})
	return lo.Uniq(modifiedPaths), nil
}

// CommonModifiedPaths returns the intersection of the paths modified between base and
// firstRevision and between base and secondRevision. Iteration follows the order of the
// first diff; callers must not depend on it for correctness.
func (selector *Selector) CommonModifiedPaths(executionContext context.Context, baseRevision string, firstRevision string, secondRevision string) ([]string, error) {
	firstModifiedPaths, firstError := selector.ModifiedPaths(executionContext, baseRevision, firstRevision)
	if firstError != nil {
		return nil, firstError
	}

	secondModifiedPaths, secondError := selector.ModifiedPaths(executionContext, baseRevision, secondRevision)
	if secondError != nil {
		return nil, secondError
	}

	secondModifiedSet := set.New[string](modifiedPathSetInitialSizeConstant)
	for _, path := range secondModifiedPaths {
		secondModifiedSet.Insert(path)
	}

	commonPaths := make([]string, 0, len(firstModifiedPaths))
	for _, path := range firstModifiedPaths {
		if secondModifiedSet.Contains(path) {
			commonPaths = append(commonPaths, path)
		}
	}

	return commonPaths, nil
}

package changeset

import (
	"fmt"
	"strings"
)

const (
	statusModifiedCodeConstant     = "M"
	statusAddedCodeConstant        = "A"
	statusDeletedCodeConstant      = "D"
	statusRenamedCodeConstant      = "R"
	statusCopiedCodeConstant       = "C"
	statusTypeChangedCodeConstant  = "T"
	statusUnmergedCodeConstant     = "U"
	nameStatusFieldSeparator       = "\x00"
	truncatedNameStatusTemplate    = "name-status output truncated after status %q"
	emptyNameStatusCodeTemplate    = "name-status output has an empty status at field %d"
	renameNameStatusPathsConstant  = 2
	defaultNameStatusPathsConstant = 1
)

// Status classifies how a path changed between two revisions.
type Status string

// Supported change statuses.
const (
	StatusModified    Status = Status("modified")
	StatusAdded       Status = Status("added")
	StatusDeleted     Status = Status("deleted")
	StatusRenamed     Status = Status("renamed")
	StatusCopied      Status = Status("copied")
	StatusTypeChanged Status = Status("type_changed")
	StatusOther       Status = Status("other")
)

var statusCodeMapping = map[string]Status{
	statusModifiedCodeConstant:    StatusModified,
	statusAddedCodeConstant:       StatusAdded,
	statusDeletedCodeConstant:     StatusDeleted,
	statusRenamedCodeConstant:     StatusRenamed,
	statusCopiedCodeConstant:      StatusCopied,
	statusTypeChangedCodeConstant: StatusTypeChanged,
	statusUnmergedCodeConstant:    StatusOther,
}

// Record is a single (path, status) pair reported by a diff. Renames and copies carry
// the source path in PreviousPath.
type Record struct {
	Path         string
	PreviousPath string
	Status       Status
}

// StatusFromCode maps a git name-status code such as "M" or "R100" onto a Status.
func StatusFromCode(code string) Status {
	trimmedCode := strings.TrimSpace(code)
	if len(trimmedCode) == 0 {
		return StatusOther
	}
	status, known := statusCodeMapping[trimmedCode[:1]]
	if !known {
		return StatusOther
	}
	return status
}

// ParseNameStatus converts NUL-separated `git diff --name-status -z` output into change records.
// Paths are taken verbatim; no quoting or normalization is applied.
func ParseNameStatus(output string) ([]Record, error) {
	records := make([]Record, 0)
	trimmedOutput := strings.TrimSuffix(output, nameStatusFieldSeparator)
	if len(trimmedOutput) == 0 {
		return records, nil
	}

	fields := strings.Split(trimmedOutput, nameStatusFieldSeparator)
	for fieldIndex := 0; fieldIndex < len(fields); {
		code := strings.TrimSpace(fields[fieldIndex])
		if len(code) == 0 {
			return nil, fmt.Errorf(emptyNameStatusCodeTemplate, fieldIndex)
		}

		status := StatusFromCode(code)
		pathCount := defaultNameStatusPathsConstant
		if status == StatusRenamed || status == StatusCopied {
			pathCount = renameNameStatusPathsConstant
		}

		if fieldIndex+pathCount >= len(fields) {
			return nil, fmt.Errorf(truncatedNameStatusTemplate, code)
		}

		record := Record{Path: fields[fieldIndex+pathCount], Status: status}
		if pathCount == renameNameStatusPathsConstant {
			record.PreviousPath = fields[fieldIndex+1]
		}
		records = append(records, record)
		fieldIndex += pathCount + 1
	}

	return records, nil
}

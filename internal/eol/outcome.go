package eol

import "fmt"

const (
	binaryAtBaseTemplateConstant     = "%s is binary on merge base"
	mixedAtBaseTemplateConstant      = "%s has mixed EOL on merge base"
	unknownAtBaseTemplateConstant    = "%s has unknown EOL on merge base"
	noChangeTemplateConstant         = "%s: No change (%s)"
	changedOnBranch1TemplateConstant = "%s: Changed on branch1 (%s -> %s)"
	changedOnBranch2TemplateConstant = "%s: Changed on branch2 (%s -> %s)"
	changedOnBothTemplateConstant    = "%s: Changed on both branches (%s -> %s on branch1, %s -> %s on branch2)"
	outcomeBinaryAtBaseKeyConstant   = "binary_at_base"
	outcomeMixedAtBaseKeyConstant    = "mixed_at_base"
	outcomeUnknownAtBaseKeyConstant  = "unknown_at_base"
	outcomeNoChangeKeyConstant       = "no_change"
	outcomeBranch1KeyConstant        = "changed_on_branch1"
	outcomeBranch2KeyConstant        = "changed_on_branch2"
	outcomeBothKeyConstant           = "changed_on_both"
)

// OutcomeKind enumerates the drift verdicts for a single path.
type OutcomeKind int

// Supported outcome kinds.
const (
	OutcomeUnknownAtBase OutcomeKind = iota
	OutcomeBinaryAtBase
	OutcomeMixedAtBase
	OutcomeNoChange
	OutcomeChangedOnBranch1
	OutcomeChangedOnBranch2
	OutcomeChangedOnBoth
)

var outcomeKindKeys = map[OutcomeKind]string{
	OutcomeUnknownAtBase:    outcomeUnknownAtBaseKeyConstant,
	OutcomeBinaryAtBase:     outcomeBinaryAtBaseKeyConstant,
	OutcomeMixedAtBase:      outcomeMixedAtBaseKeyConstant,
	OutcomeNoChange:         outcomeNoChangeKeyConstant,
	OutcomeChangedOnBranch1: outcomeBranch1KeyConstant,
	OutcomeChangedOnBranch2: outcomeBranch2KeyConstant,
	OutcomeChangedOnBoth:    outcomeBothKeyConstant,
}

// String returns the stable machine-readable key of the outcome kind.
func (kind OutcomeKind) String() string {
	key, known := outcomeKindKeys[kind]
	if !known {
		return outcomeUnknownAtBaseKeyConstant
	}
	return key
}

// Outcome captures the drift verdict together with the classifications that produced it.
// Branch classifications are Unknown for the terminal merge-base outcomes.
type Outcome struct {
	Kind    OutcomeKind
	Base    Classification
	Branch1 Classification
	Branch2 Classification
}

// IsDrift reports whether at least one branch changed the line-ending convention.
func (outcome Outcome) IsDrift() bool {
	switch outcome.Kind {
	case OutcomeChangedOnBranch1, OutcomeChangedOnBranch2, OutcomeChangedOnBoth:
		return true
	default:
		return false
	}
}

// Describe renders the human-readable report line for the path.
func (outcome Outcome) Describe(path string) string {
	switch outcome.Kind {
	case OutcomeBinaryAtBase:
		return fmt.Sprintf(binaryAtBaseTemplateConstant, path)
	case OutcomeMixedAtBase:
		return fmt.Sprintf(mixedAtBaseTemplateConstant, path)
	case OutcomeNoChange:
		return fmt.Sprintf(noChangeTemplateConstant, path, outcome.Base)
	case OutcomeChangedOnBranch1:
		return fmt.Sprintf(changedOnBranch1TemplateConstant, path, outcome.Base, outcome.Branch1)
	case OutcomeChangedOnBranch2:
		return fmt.Sprintf(changedOnBranch2TemplateConstant, path, outcome.Base, outcome.Branch2)
	case OutcomeChangedOnBoth:
		return fmt.Sprintf(changedOnBothTemplateConstant, path, outcome.Base, outcome.Branch1, outcome.Base, outcome.Branch2)
	default:
		return fmt.Sprintf(unknownAtBaseTemplateConstant, path)
	}
}

// CompareBase resolves the outcome decided by the merge-base classification alone.
// It returns false when the base is LF or CRLF and the branches must be inspected.
func CompareBase(base Classification) (Outcome, bool) {
	switch base {
	case ClassificationBinary:
		return Outcome{Kind: OutcomeBinaryAtBase, Base: ClassificationBinary}, true
	case ClassificationMixed:
		return Outcome{Kind: OutcomeMixedAtBase, Base: ClassificationMixed}, true
	case ClassificationLF, ClassificationCRLF:
		return Outcome{}, false
	default:
		return Outcome{Kind: OutcomeUnknownAtBase, Base: ClassificationUnknown}, true
	}
}

// Compare applies the drift decision table to the merge-base and branch classifications.
func Compare(base Classification, branch1 Classification, branch2 Classification) Outcome {
	if terminalOutcome, terminal := CompareBase(base); terminal {
		return terminalOutcome
	}

	branch1Changed := branch1 != base
	branch2Changed := branch2 != base

	switch {
	case branch1Changed && branch2Changed:
		return Outcome{Kind: OutcomeChangedOnBoth, Base: base, Branch1: branch1, Branch2: branch2}
	case branch1Changed:
		return Outcome{Kind: OutcomeChangedOnBranch1, Base: base, Branch1: branch1, Branch2: branch2}
	case branch2Changed:
		return Outcome{Kind: OutcomeChangedOnBranch2, Base: base, Branch1: branch1, Branch2: branch2}
	default:
		return Outcome{Kind: OutcomeNoChange, Base: base, Branch1: branch1, Branch2: branch2}
	}
}

package vcstest

import "github.com/go-git/go-git/v5/plumbing"

// Branch and file names used by DriftScenario.
const (
	ScenarioBranch1NameConstant   = "branch1"
	ScenarioBranch2NameConstant   = "branch2"
	ScenarioUnrelatedNameConstant = "unrelated"
	ScenarioTextPathConstant      = "a.txt"
	ScenarioBinaryPathConstant    = "b.bin"
	ScenarioBothPathConstant      = "docs/both.md"
	ScenarioMixedPathConstant     = "mixed.txt"
	ScenarioRenamedPathConstant   = "renamed.txt"
	ScenarioRenameSourceConstant  = "moved-away.txt"
	ScenarioDirectoryConstant     = "docs"
	ScenarioOnlyBranch1Constant   = "only-branch1.txt"
	ScenarioBranch2PathConstant   = "c.txt"
	ScenarioUnchangedPathConstant = "same.txt"
)

// Scenario records the commits produced by DriftScenario.
type Scenario struct {
	Base      plumbing.Hash
	Branch1   plumbing.Hash
	Branch2   plumbing.Hash
	Unrelated plumbing.Hash
}

// DriftScenario commits a base revision and two branches that modify the same six paths:
//   - a.txt is LF at base, CRLF on branch1 and still LF on branch2
//   - b.bin holds a null byte at base
//   - docs/both.md is LF at base and CRLF on both branches
//   - mixed.txt mixes terminators at base
//   - c.txt is LF at base and CRLF on branch2 only
//   - same.txt stays LF everywhere
//
// Branch1 additionally renames moved-away.txt and touches only-branch1.txt; an orphan
// branch named unrelated shares no history with the others.
func DriftScenario(builder *Builder) Scenario {
	builder.testingInstance.Helper()

	base := builder.Commit("base", map[string][]byte{
		ScenarioTextPathConstant:      []byte("first\nsecond\n"),
		ScenarioBinaryPathConstant:    []byte("head\x00tail\n"),
		ScenarioBothPathConstant:      []byte("# title\nbody\n"),
		ScenarioMixedPathConstant:     []byte("unix\nwindows\r\n"),
		ScenarioRenameSourceConstant:  []byte("stays the same\n"),
		ScenarioOnlyBranch1Constant:   []byte("one\n"),
		ScenarioBranch2PathConstant:   []byte("c1\nc2\n"),
		ScenarioUnchangedPathConstant: []byte("same\n"),
	})

	builder.Branch(ScenarioBranch1NameConstant, base)
	branch1 := builder.Commit("branch1", map[string][]byte{
		ScenarioTextPathConstant:      []byte("first\r\nsecond\r\n"),
		ScenarioBinaryPathConstant:    []byte("head\x00branch1\n"),
		ScenarioBothPathConstant:      []byte("# title\r\nbody\r\n"),
		ScenarioMixedPathConstant:     []byte("unix\nwindows\r\nbranch1\n"),
		ScenarioRenameSourceConstant:  nil,
		ScenarioRenamedPathConstant:   []byte("stays the same\n"),
		ScenarioOnlyBranch1Constant:   []byte("one\ntwo\n"),
		ScenarioBranch2PathConstant:   []byte("c1\nc2\nbranch1\n"),
		ScenarioUnchangedPathConstant: []byte("same\nbranch1\n"),
	})

	builder.Branch(ScenarioBranch2NameConstant, base)
	branch2 := builder.Commit("branch2", map[string][]byte{
		ScenarioTextPathConstant:      []byte("first\nsecond\nthird\n"),
		ScenarioBinaryPathConstant:    []byte("head\x00branch2\n"),
		ScenarioBothPathConstant:      []byte("# title\r\nbody\r\nmore\r\n"),
		ScenarioMixedPathConstant:     []byte("unix\nwindows\r\nbranch2\n"),
		ScenarioBranch2PathConstant:   []byte("c1\r\nc2\r\n"),
		ScenarioUnchangedPathConstant: []byte("same\nbranch2\n"),
	})

	builder.Orphan(ScenarioUnrelatedNameConstant)
	unrelated := builder.Commit("unrelated", map[string][]byte{ScenarioTextPathConstant: []byte("orphan\n")})

	return Scenario{Base: base, Branch1: branch1, Branch2: branch2, Unrelated: unrelated}
}

// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution with an optional cap on captured standard output,
// and defines the abstractions eolcdt uses to run git in a testable manner.
package execshell

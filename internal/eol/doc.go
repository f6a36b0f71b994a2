// Package eol classifies the line-ending convention of file revisions and
// decides how that convention drifted between a merge base and two branches.
//
// Classify inspects raw bytes, ReadCapped bounds how much of a revision is
// inspected, and Compare/CompareBase implement the drift decision table used
// by the drift orchestrator.
package eol

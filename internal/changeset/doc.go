// Package changeset models the change records produced by diffing two revisions
// and selects the paths that both branches modified relative to their merge base.
package changeset

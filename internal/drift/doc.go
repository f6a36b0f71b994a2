// Package drift detects line-ending drift between two branches.
//
// Service.Analyze resolves the merge base once, selects the paths modified on both
// branches, classifies each path at the merge base and, when the base is LF or CRLF,
// at both branch tips. Renderer turns the resulting Report into text, JSON, or YAML
// and CommandBuilder exposes the whole flow as a cobra command.
package drift

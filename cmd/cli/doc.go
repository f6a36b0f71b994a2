// Package cli constructs the eolcdt command-line interface. It wires the
// analysis command as the root Cobra command together with the configuration
// loader, embedded defaults, and the diagnostic and console loggers.
package cli

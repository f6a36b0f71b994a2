// Package utils exposes the configuration loader, logger factory, and command
// context helpers shared by the eolcdt entrypoint and its analysis command.
//
// Subpackages flags and path hold cobra flag helpers and home-directory
// expansion for repository paths.
package utils

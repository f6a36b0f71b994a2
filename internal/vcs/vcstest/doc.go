// Package vcstest builds small git repositories for exercising vcs.Repository
// implementations and the drift service against real history.
package vcstest

// Package vcs defines the read-only version-control contract the drift analysis
// depends on, together with the error taxonomy shared by its implementations.
//
// Two implementations exist: gitcli drives the git executable through execshell,
// and gogit reads repositories in process via go-git.
package vcs

// Package gogit implements vcs.Repository in process on top of go-git, for hosts
// without a git executable.
package gogit

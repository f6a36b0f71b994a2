// Package gitcli implements vcs.Repository by running the git executable through execshell.
package gitcli

// Package ui renders command lifecycle events for people watching the terminal.
//
// Detailed telemetry keeps flowing through the diagnostic logger; this package only
// decides what a console reader sees while git runs.
package ui

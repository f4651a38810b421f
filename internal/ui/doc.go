// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for running transfer jobs:
//  1. [JobListView] : Browse persisted jobs and pick one to run
//  2. [ConfirmView] : Confirm before the walk starts
//  3. [TransferView] : Monitor real-time walk progress
//  4. [ResultView] : Display pages walked and failed branches
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the transfer engine, providing non-blocking status reporting during walks.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

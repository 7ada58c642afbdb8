// Package cli defines the Cobra command tree for the exthost binary. Each
// file registers one top-level command with the root command and delegates
// to internal packages for the work itself.
package cli

// Package scaffold generates a new extension from embedded templates: a
// manifest declaring one tool, one prompt and one REST API, and a Go entry
// point that contributes them.
package scaffold

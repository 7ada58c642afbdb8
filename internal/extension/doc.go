// Package extension discovers, loads and validates extensions.
//
// An extension is a directory with a manifest and backend entry points.
// Entry points are Go functions published with Provide, usually from an
// init function, and resolved by module path through an Importer. Loading
// runs the entry points inside an extension scope so every decorator call
// is buffered, then checks the buffer against the manifest and registers it
// as a whole or not at all.
package extension

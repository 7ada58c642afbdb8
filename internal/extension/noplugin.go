//go:build !((linux || darwin || freebsd) && cgo)

package extension

// DefaultImporter resolves compiled-in entry points. Plugins are not
// supported on this platform.
func DefaultImporter() Importer {
	return StaticImporter{}
}

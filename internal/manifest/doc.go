// Package manifest handles parsing and validation of extension manifests.
// A manifest declares the extension's identity, its backend entry points and
// the contributions it is allowed to register. Manifests are JSON or YAML and
// are validated against an embedded JSON Schema before they are parsed.
package manifest

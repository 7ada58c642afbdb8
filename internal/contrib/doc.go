// Package contrib provides the decorators host and extension code use to
// contribute tools, prompts and REST APIs.
//
// A decorator builds the contribution's metadata, attaches it to the
// registration context and then acts on the context's mode: register now
// (host), buffer for manifest validation (extension) or do nothing further
// (build). Decorators start in a stub state; the host wires concrete
// registrars with Wire during startup, and registering before that fails
// with an UninitializedRegistrationError.
package contrib

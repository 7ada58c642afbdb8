// Package registration holds the process-wide state that decides what a
// contribution decorator does when it fires.
//
// A Context is in one of three modes. In host mode decorators register
// their contribution immediately. In extension mode they only buffer a
// PendingContribution for the extension that is currently loading, and the
// extension manager later validates the buffer against the extension's
// manifest. In build mode they only attach metadata so offline tooling can
// enumerate contributions without a running host.
//
// The host creates one Context at boot and injects it into the decorators
// and the extension manager. Extension scopes do not nest: loading is
// strictly sequential.
package registration

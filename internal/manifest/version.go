package manifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// VersionError is returned when a manifest's version is not semver or its
// hostVersion constraint rejects the running host.
type VersionError struct {
	ExtensionID string
	Version     string
	Constraint  string
	HostVersion string
	Err         error
}

func (e *VersionError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("extension %s: invalid version %q: %v", e.ExtensionID, e.Version, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("extension %s: host version constraint %q: %v", e.ExtensionID, e.Constraint, e.Err)
	}
	return fmt.Sprintf("extension %s requires host %s, running %s", e.ExtensionID, e.Constraint, e.HostVersion)
}

func (e *VersionError) Unwrap() error { return e.Err }

// CheckVersion reports whether the manifest version is valid semver.
func (m *Manifest) CheckVersion() error {
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return &VersionError{ExtensionID: m.ID, Version: m.Version, Err: err}
	}
	return nil
}

// CheckHostVersion checks hostVersion against the manifest's hostVersion
// constraint. Manifests without a constraint, and hosts that report an empty
// or non-semver version such as "dev", always pass.
func (m *Manifest) CheckHostVersion(hostVersion string) error {
	if m.HostVersion == "" || hostVersion == "" {
		return nil
	}
	c, err := semver.NewConstraint(m.HostVersion)
	if err != nil {
		return &VersionError{ExtensionID: m.ID, Constraint: m.HostVersion, HostVersion: hostVersion, Err: err}
	}
	v, err := semver.NewVersion(hostVersion)
	if err != nil {
		return nil
	}
	if !c.Check(v) {
		return &VersionError{ExtensionID: m.ID, Constraint: m.HostVersion, HostVersion: hostVersion}
	}
	return nil
}

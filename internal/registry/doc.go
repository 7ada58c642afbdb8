// Package registry records the contributions that passed manifest
// validation, keyed by kind and namespaced name.
package registry

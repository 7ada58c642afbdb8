// Package auth guards protected contributions with HS256 bearer tokens.
package auth

import (
	"context"
	"slices"
)

// AdminRole grants every permission.
const AdminRole = "admin"

// Principal is the authenticated caller.
type Principal struct {
	Subject string
	Roles   []string
}

// HasPermission reports whether p holds the admin role or a role named
// perm.
func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, AdminRole) || (perm != "" && slices.Contains(p.Roles, perm))
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal attached to ctx.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// TenantContext identifies the tenant a request is scoped to. It is a
// plain value so that low-level packages (logging, numbering) can read
// the identity without depending on the tenant registry.
type TenantContext struct {
	TenantID   string
	TenantSlug string
}

type tenantContextKey struct{}

// WithTenant adds TenantContext to context.
func WithTenant(ctx context.Context, t *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, t)
}

// GetTenant returns TenantContext from context.
func GetTenant(ctx context.Context) *TenantContext {
	if v, ok := ctx.Value(tenantContextKey{}).(*TenantContext); ok {
		return v
	}
	return nil
}

// GetTenantID returns tenant ID from context or empty string.
func GetTenantID(ctx context.Context) string {
	if t := GetTenant(ctx); t != nil {
		return t.TenantID
	}
	return ""
}

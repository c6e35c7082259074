package auth

import "context"

type ctxKey string

const claimsKey ctxKey = "claims"

// WithClaims cuelga la identidad autenticada del contexto del request.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext recupera la identidad que dejó el middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return Claims{}, false
	}
	c, ok := v.(Claims)
	return c, ok
}

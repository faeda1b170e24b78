package auth

import "context"

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Identity is what the API layer knows about the caller.
type Identity struct {
	Subject  string
	Email    string
	FullName string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}

func SubjectFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Subject
}

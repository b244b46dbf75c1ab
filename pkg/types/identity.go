package types

import "context"

// Identity is an opaque caller handle. Two identities are the same caller
// exactly when they compare equal with ==. The zero value is "no caller".
type Identity struct {
	principal string
}

// NewIdentity wraps a principal string. The string is never parsed.
func NewIdentity(principal string) Identity {
	return Identity{principal: principal}
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool { return i.principal == "" }

func (i Identity) String() string { return i.principal }

// Equal reports whether i and o are the same caller.
func (i Identity) Equal(o Identity) bool { return i == o }

// MarshalText implements encoding.TextMarshaler.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.principal), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Identity) UnmarshalText(b []byte) error {
	i.principal = string(b)
	return nil
}

type callerKey struct{}

// WithCaller returns a context carrying the identity of the requester.
func WithCaller(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

// CallerFromContext returns the requester identity, if one was attached.
func CallerFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(callerKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}

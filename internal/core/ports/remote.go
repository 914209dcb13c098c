// internal/core/ports/remote.go
package ports

import (
	"context"
	"encoding/json"
)

// SessionProvider supplies a bearer credential for the remote billing
// system, re-authenticating on expiry or authorization failure.
type SessionProvider interface {
	// AuthHeader returns the value for the Authorization header.
	AuthHeader(ctx context.Context) (string, error)
	// Invalidate drops the cached credential so the next AuthHeader call
	// re-authenticates.
	Invalidate()
	// Connected reports whether a usable credential is cached or can be
	// acquired.
	Connected(ctx context.Context) bool
}

// RemoteClient pulls raw payloads from the remote billing system. The
// inventory contract is unstable, so FetchInventory probes candidate
// endpoint/method combinations; the history endpoint is assumed fixed.
type RemoteClient interface {
	FetchInventory(ctx context.Context) (json.RawMessage, error)
	FetchHistories(ctx context.Context) (json.RawMessage, error)
}

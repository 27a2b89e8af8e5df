package sfmc

import "context"

// Executor is the contract object managers use to issue API calls.
type Executor interface {
	// Authenticate forces a token exchange, replacing any cached token.
	Authenticate(ctx context.Context) error

	// Execute dispatches a request, attaching a Bearer token when required
	// and refreshing it once on 401/403.
	Execute(ctx context.Context, spec RequestSpec) (*Response, error)
}

var _ Executor = (*Client)(nil)

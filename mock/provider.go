// Package mock provides test doubles for multiverse interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/multiverse"
)

// Interface compliance check.
var _ multiverse.Provider = (*Provider)(nil)

// Provider is a test double for multiverse.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req multiverse.Request) (multiverse.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req multiverse.Request) (multiverse.Stream, error) {
	return p.StreamFn(ctx, req)
}

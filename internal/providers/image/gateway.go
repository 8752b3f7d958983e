package image

import "context"

// Gateway routes generation to the premium backend when a credential is
// configured and to the keyless backend otherwise. The choice is made per
// call so key rotation takes effect without a restart.
type Gateway struct {
	premium  *FalGenerator
	fallback Generator
}

// NewGateway wires the two backends together.
func NewGateway(premium *FalGenerator, fallback Generator) *Gateway {
	return &Gateway{premium: premium, fallback: fallback}
}

// Generate dispatches to the selected backend.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Asset, error) {
	if g.premium.HasCredentials() {
		return g.premium.Generate(ctx, req)
	}
	return g.fallback.Generate(ctx, req)
}

var _ Generator = (*Gateway)(nil)

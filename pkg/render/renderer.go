package render

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Renderer converts a service form into a byte representation (HTML, terminal
// output, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, service schema.Service, options RenderOptions) ([]byte, error)
}

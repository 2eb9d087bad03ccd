package ports

import (
	"io"

	"github.com/nick-merrill/life-expectancy/internal/domain"
)

// ChartRenderer draws the conditional distribution as an image.
type ChartRenderer interface {
	Render(w io.Writer, a domain.Analysis) error
	RenderFile(path string, a domain.Analysis) error
}

package ports

import "github.com/nick-merrill/life-expectancy/internal/domain"

type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}

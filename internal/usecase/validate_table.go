package usecase

import (
	"context"

	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/ports"
)

type ValidateTable struct {
	tables ports.TableLoader
}

func NewValidateTable(tl ports.TableLoader) *ValidateTable {
	return &ValidateTable{tables: tl}
}

// Execute loads a table, which runs the full invariant checks, and returns it
// so callers can report its shape. No statistics are computed.
func (uc *ValidateTable) Execute(ctx context.Context, path string) (domain.LifeTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.LifeTable{}, err
	}
	return uc.tables.LoadTable(path)
}

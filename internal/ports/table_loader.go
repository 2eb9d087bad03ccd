package ports

import "github.com/nick-merrill/life-expectancy/internal/domain"

// TableLoader loads life tables from a source (e.g., filesystem).
type TableLoader interface {
	LoadTable(path string) (domain.LifeTable, error)
	ListTables(root string) ([]domain.TableRef, error)
}

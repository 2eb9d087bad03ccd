package ports

import "github.com/nick-merrill/life-expectancy/internal/domain"

// ProfileLoader resolves named analysis presets from a workspace catalog.
type ProfileLoader interface {
	LoadProfile(root, name string) (domain.Profile, error)
	ListProfiles(root string) ([]domain.ProfileRef, error)
}

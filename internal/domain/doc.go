// Package domain contains the core domain model for lifex.
//
// The domain is input- and output-agnostic: it does not depend on CSV parsing,
// chart rendering, or the filesystem. Infra/adapters map into/from these types.
package domain

package domain

// Profile is a named analysis preset: a demographic subset table plus the
// conditioning options to analyze it with. Unset fields fall back to the
// workspace defaults.
type Profile struct {
	Name        string
	Table       string
	MinAge      *int
	Optimistic  *bool
	Percentiles []int
}

// ProfileRef is a lightweight reference to a profile in the catalog.
type ProfileRef struct {
	Name  string
	Table string
}

package yamlprofile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/ports"
)

const profilesFile = "profiles.yaml"

type Loader struct {
	fileName string
}

type Option func(*Loader)

// WithFileName overrides the profiles file name, mostly for tests.
func WithFileName(name string) Option {
	return func(l *Loader) { l.fileName = name }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{fileName: profilesFile}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.ProfileLoader = (*Loader)(nil)

func (l *Loader) LoadProfile(root, name string) (domain.Profile, error) {
	path := filepath.Join(root, l.fileName)
	profiles, err := l.readAll(path)
	if err != nil {
		return domain.Profile{}, err
	}

	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Profile{}, &domain.OpError{
		Op:   "yamlprofile.load",
		Kind: domain.KindNotFound,
		Path: path,
		Err:  fmt.Errorf("profile %q not defined", name),
	}
}

// ListProfiles returns the profiles declared in the workspace, sorted by name.
// A workspace without a profiles file simply has none.
func (l *Loader) ListProfiles(root string) ([]domain.ProfileRef, error) {
	path := filepath.Join(root, l.fileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	profiles, err := l.readAll(path)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.ProfileRef, 0, len(profiles))
	for _, p := range profiles {
		refs = append(refs, domain.ProfileRef{Name: p.Name, Table: p.Table})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (l *Loader) readAll(path string) ([]domain.Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var yp yamlProfiles
	if err := yaml.Unmarshal(b, &yp); err != nil {
		return nil, &domain.OpError{
			Op:   "yamlprofile.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, yp)
}

type yamlProfiles struct {
	Profiles []yamlProfile `yaml:"profiles"`
}

type yamlProfile struct {
	Name        string `yaml:"name"`
	Table       string `yaml:"table"`
	MinAge      *int   `yaml:"min_age"`
	Optimistic  *bool  `yaml:"optimistic"`
	Percentiles []int  `yaml:"percentiles"`
}

func mapAndValidate(path string, yp yamlProfiles) ([]domain.Profile, error) {
	out := make([]domain.Profile, 0, len(yp.Profiles))
	seen := map[string]bool{}

	for i, p := range yp.Profiles {
		fieldPrefix := fmt.Sprintf("profiles[%d]", i)

		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, invalidField(path, fieldPrefix+".name", "profile name is required")
		}
		if seen[name] {
			return nil, invalidField(path, fieldPrefix+".name", fmt.Sprintf("duplicate profile %q", name))
		}
		seen[name] = true

		if p.MinAge != nil && *p.MinAge < 0 {
			return nil, invalidField(path, fieldPrefix+".min_age", "min_age cannot be negative")
		}
		for _, q := range p.Percentiles {
			if q < 1 || q > 99 {
				return nil, invalidField(path, fieldPrefix+".percentiles", fmt.Sprintf("percentile %d outside [1, 99]", q))
			}
		}

		out = append(out, domain.Profile{
			Name:        name,
			Table:       strings.TrimSpace(p.Table),
			MinAge:      p.MinAge,
			Optimistic:  p.Optimistic,
			Percentiles: p.Percentiles,
		})
	}

	return out, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlprofile.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}

package roster

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/mergington/activities/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type seedFile struct {
	Activities []domain.Activity `yaml:"activities"`
}

// DefaultSeed returns the built-in Mergington catalog.
func DefaultSeed() []domain.Activity {
	seed, err := ParseSeed(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("roster: embedded catalog is invalid: %v", err))
	}
	return seed
}

// LoadSeed reads a seed catalog from path. An empty path selects the
// built-in catalog.
func LoadSeed(path string) ([]domain.Activity, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed catalog %s: %w", path, err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("seed catalog %s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed decodes and validates a YAML seed catalog.
func ParseSeed(data []byte) ([]domain.Activity, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	for i := range f.Activities {
		if f.Activities[i].Participants == nil {
			f.Activities[i].Participants = []string{}
		}
	}
	if err := ValidateSeed(f.Activities); err != nil {
		return nil, err
	}
	return f.Activities, nil
}

// ValidateSeed checks that names are present and unique, capacities are
// positive and no roster lists the same email twice.
func ValidateSeed(seed []domain.Activity) error {
	names := make(map[string]struct{}, len(seed))
	for i, a := range seed {
		if a.Name == "" {
			return fmt.Errorf("%w: activity %d has no name", ErrInvalidSeed, i)
		}
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("%w: duplicate activity %q", ErrInvalidSeed, a.Name)
		}
		names[a.Name] = struct{}{}

		if a.MaxParticipants <= 0 {
			return fmt.Errorf("%w: activity %q: max_participants must be positive", ErrInvalidSeed, a.Name)
		}
		seen := make(map[string]struct{}, len(a.Participants))
		for _, p := range a.Participants {
			if _, dup := seen[p]; dup {
				return fmt.Errorf("%w: activity %q lists %s twice", ErrInvalidSeed, a.Name, p)
			}
			seen[p] = struct{}{}
		}
	}
	return nil
}

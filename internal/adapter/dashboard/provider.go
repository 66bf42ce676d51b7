package dashboard

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"teamassist/internal/domain"
)

//go:embed dashboards.yaml
var defaultDashboards []byte

var ErrUnknownDashboard = errors.New("unknown dashboard type")

type kind struct {
	Title    string           `yaml:"title"`
	Sections []domain.Section `yaml:"sections"`
}

type dashboardsFile struct {
	Kinds map[string]kind             `yaml:"kinds"`
	Users map[string][]domain.Section `yaml:"users"`
}

// Provider builds dashboards from role templates plus per-user sections.
type Provider struct {
	kinds map[string]kind
	users map[string][]domain.Section
}

// Default returns the built-in dashboards for the sample team.
func Default() *Provider {
	p, err := parse(defaultDashboards)
	if err != nil {
		panic(fmt.Sprintf("embedded dashboards.yaml: %v", err))
	}
	return p
}

// Load reads a dashboards file; an empty path gives the built-in set.
func Load(path string) (*Provider, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard file: %w", err)
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard file %s: %w", path, err)
	}
	return p, nil
}

func parse(data []byte) (*Provider, error) {
	var f dashboardsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	p := &Provider{
		kinds: make(map[string]kind, len(f.Kinds)),
		users: make(map[string][]domain.Section, len(f.Users)),
	}
	for name, k := range f.Kinds {
		p.kinds[strings.ToLower(name)] = k
	}
	for name, sections := range f.Users {
		p.users[strings.ToLower(name)] = sections
	}
	return p, nil
}

// Dashboard returns the user's sections followed by their role's sections.
func (p *Provider) Dashboard(user domain.User) (domain.Dashboard, error) {
	k, ok := p.kinds[strings.ToLower(user.Dashboard)]
	if !ok {
		return domain.Dashboard{}, fmt.Errorf("%w: %q", ErrUnknownDashboard, user.Dashboard)
	}

	title := k.Title
	if title == "" {
		title = "Welcome back, " + user.Name
	}

	own := p.users[strings.ToLower(user.Username)]
	sections := make([]domain.Section, 0, len(own)+len(k.Sections))
	sections = append(sections, own...)
	sections = append(sections, k.Sections...)

	return domain.Dashboard{
		Title:    title,
		Kind:     user.Dashboard,
		Sections: sections,
	}, nil
}

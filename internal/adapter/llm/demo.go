package llm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"teamassist/internal/domain"
)

// Rule is one canned answer. It matches when any keyword occurs in the
// lowercased question.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
}

func (r Rule) Matches(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range r.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// DefaultRules are the built-in answers for the sample team.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "on-call",
			Keywords: []string{"on call", "on-call", "oncall"},
			Response: "Scott Forsmann is on call this week. You can reach him at 612-555-0134.",
		},
		{
			Name:     "team",
			Keywords: []string{"machu picchu", "team members"},
			Response: "The Machu Picchu team includes Sofia Khan, Ravali Botta, Michael Joyce, Shasikumar Bommineni, Ganesh Nettem, Nagarjuna Reddy, and Ajit Krishnan. Michael Joyce serves as the Senior Engineer.",
		},
		{
			Name:     "sprint",
			Keywords: []string{"sprint", "goals"},
			Response: "Sprint 23 focuses on Kafka migration, eliminating the Top of Funnel script, implementing automated spouse assignment, and fixing dual eligibility conflicts.",
		},
		{
			Name:     "tech-stack",
			Keywords: []string{"tech stack", "technology", "tools"},
			Response: "Our tech stack uses Java Spring Boot, MySQL, Kubernetes, Apache Kafka, and Splunk, with Capillary Technologies handling the frontend.",
		},
		{
			Name:     "database",
			Keywords: []string{"database", "db issues", "dba"},
			Response: "For database issues, contact dba-team@optum.com or escalate to Maria Garcia for urgent problems.",
		},
		{
			Name:     "kafka",
			Keywords: []string{"kafka", "migration", "top of funnel"},
			Response: "The Kafka migration replaces the legacy Top of Funnel Perl script with event-driven processing. Britney Duratinsky is leading this effort.",
		},
	}
}

type rulesFile struct {
	Rules    []Rule `yaml:"rules"`
	Fallback string `yaml:"fallback"`
}

// DemoResponder answers from an ordered rule table; the first match wins.
type DemoResponder struct {
	rules     []Rule
	fallback  string
	assistant string
}

func NewDemoResponder(assistant string, rules []Rule) *DemoResponder {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &DemoResponder{
		rules:     rules,
		assistant: assistant,
	}
}

// LoadDemoResponder reads rules from a YAML file. An empty path gives the
// built-in rules.
func LoadDemoResponder(assistant, path string) (*DemoResponder, error) {
	if path == "" {
		return NewDemoResponder(assistant, nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read demo rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse demo rules %s: %w", path, err)
	}
	for i, r := range f.Rules {
		if len(r.Keywords) == 0 || r.Response == "" {
			return nil, fmt.Errorf("demo rule %d (%s) needs keywords and a response", i, r.Name)
		}
	}
	d := NewDemoResponder(assistant, f.Rules)
	d.fallback = f.Fallback
	return d, nil
}

func (d *DemoResponder) Respond(user domain.User, question string) string {
	for _, r := range d.rules {
		if r.Matches(question) {
			return r.Response
		}
	}
	if d.fallback != "" {
		return strings.ReplaceAll(d.fallback, "{name}", user.Name)
	}
	return fmt.Sprintf("Hi %s! In the full version with API access, %s would provide detailed answers based on your team's documents. "+
		"This demo showcases the UI and role-based dashboards with realistic team data.", user.Name, d.assistant)
}

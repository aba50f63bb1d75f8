package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// CalculationMethod controls how component scores combine into a total.
type CalculationMethod string

const (
	// MethodSum adds raw component scores and divides by the configured total maximum.
	MethodSum CalculationMethod = "sum"
	// MethodWeightedAverage scales each component by its weight (percentage points).
	MethodWeightedAverage CalculationMethod = "weighted_average"
)

// Canonical keys for the non-CA components.
const (
	ExamKey    = "exam"
	ProjectKey = "project"
)

const (
	// MinCAs and MaxCAs bound the number of continuous-assessment components.
	MinCAs = 2
	MaxCAs = 10

	weightTolerance = 0.001
)

// AssessmentComponentConfig describes one gradable continuous-assessment slot.
type AssessmentComponentConfig struct {
	Name         string   `json:"name" validate:"required"`
	ComponentKey string   `json:"componentKey,omitempty"`
	MaxScore     float64  `json:"maxScore" validate:"gt=0"`
	Weight       *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsOptional   bool     `json:"isOptional"`
}

// ExamConfig configures the examination component.
type ExamConfig struct {
	Enabled  bool     `json:"enabled"`
	Name     string   `json:"name"`
	MaxScore float64  `json:"maxScore" validate:"gte=0"`
	Weight   *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ProjectConfig configures the optional project component.
type ProjectConfig struct {
	Enabled    bool     `json:"enabled"`
	Name       string   `json:"name"`
	MaxScore   float64  `json:"maxScore" validate:"gte=0"`
	IsOptional bool     `json:"isOptional"`
	Weight     *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// AssessmentConfig is the scoring scheme of one subject in one term.
type AssessmentConfig struct {
	NumberOfCAs       int                         `json:"numberOfCAs" validate:"min=2,max=10"`
	CAConfigs         []AssessmentComponentConfig `json:"caConfigs" validate:"required,dive"`
	Exam              ExamConfig                  `json:"exam"`
	Project           ProjectConfig               `json:"project"`
	CalculationMethod CalculationMethod           `json:"calculationMethod" validate:"required,oneof=sum weighted_average"`
	TotalMaxScore     float64                     `json:"totalMaxScore" validate:"gte=0"`
}

// Key returns the score-map key of the CA component at the zero-based index.
func (c AssessmentComponentConfig) Key(index int) string {
	if c.ComponentKey != "" {
		return c.ComponentKey
	}
	return fmt.Sprintf("ca%d", index+1)
}

// DerivedKey is the key pinned for a component authored without one. Custom names
// are slugged ("Test 1" -> "test-1"); CA-style names and names that would shadow the
// exam or project keys get the positional ca<n> key.
func (c AssessmentComponentConfig) DerivedKey(index int) string {
	if c.ComponentKey != "" {
		return c.ComponentKey
	}
	slug := Slugify(c.Name)
	if slug == "" || slug == ExamKey || slug == ProjectKey || isCAName(slug) {
		return fmt.Sprintf("ca%d", index+1)
	}
	return slug
}

// isCAName reports slugs such as "ca1" or "ca-2".
func isCAName(slug string) bool {
	rest := strings.TrimPrefix(strings.TrimPrefix(slug, "ca"), "-")
	if len(rest) == len(slug) || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Slugify derives a component key from a display name ("Test 1" -> "test-1").
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Validate reports every authoring problem in the configuration.
// The calculator never calls it; it gates configs at the time they are saved.
func (c AssessmentConfig) Validate() error {
	var problems []string
	if c.NumberOfCAs < MinCAs || c.NumberOfCAs > MaxCAs {
		problems = append(problems, fmt.Sprintf("numberOfCAs must be between %d and %d", MinCAs, MaxCAs))
	}
	if len(c.CAConfigs) != c.NumberOfCAs {
		problems = append(problems, fmt.Sprintf("numberOfCAs (%d) does not match caConfigs length (%d)", c.NumberOfCAs, len(c.CAConfigs)))
	}

	seen := map[string]struct{}{}
	if c.Exam.Enabled {
		seen[ExamKey] = struct{}{}
	}
	if c.Project.Enabled {
		seen[ProjectKey] = struct{}{}
	}
	for i, ca := range c.CAConfigs {
		if ca.MaxScore <= 0 {
			problems = append(problems, fmt.Sprintf("%s maxScore must be greater than 0", ca.Name))
		}
		key := ca.Key(i)
		if _, dup := seen[key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate component key %q", key))
		}
		seen[key] = struct{}{}
	}
	if c.Exam.Enabled && c.Exam.MaxScore <= 0 {
		problems = append(problems, "exam maxScore must be greater than 0")
	}
	if c.Project.Enabled && c.Project.MaxScore <= 0 {
		problems = append(problems, "project maxScore must be greater than 0")
	}

	switch c.CalculationMethod {
	case MethodSum:
		if c.TotalMaxScore <= 0 {
			problems = append(problems, "totalMaxScore must be greater than 0")
		}
	case MethodWeightedAverage:
		problems = append(problems, c.weightProblems()...)
	default:
		problems = append(problems, fmt.Sprintf("unsupported calculation method %q", c.CalculationMethod))
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

func (c AssessmentConfig) weightProblems() []string {
	var problems []string
	total := 0.0
	check := func(label string, weight *float64) {
		if weight == nil {
			problems = append(problems, fmt.Sprintf("%s weight is required for weighted_average", label))
			return
		}
		if *weight < 0 {
			problems = append(problems, fmt.Sprintf("%s weight cannot be negative", label))
		}
		total += *weight
	}
	for _, ca := range c.CAConfigs {
		check(ca.Name, ca.Weight)
	}
	if c.Exam.Enabled {
		check("exam", c.Exam.Weight)
	}
	if c.Project.Enabled {
		check("project", c.Project.Weight)
	}
	if math.Abs(total-100) > weightTolerance {
		problems = append(problems, fmt.Sprintf("weights must sum to 100 (got %s)", formatNumber(total)))
	}
	return problems
}

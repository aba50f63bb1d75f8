package scoring

import (
	"fmt"
	"sort"
)

// GradeBoundary maps an inclusive percentage range to a grade label.
type GradeBoundary struct {
	Grade       string  `json:"grade" validate:"required"`
	MinScore    float64 `json:"minScore" validate:"gte=0,lte=100"`
	MaxScore    float64 `json:"maxScore" validate:"gte=0,lte=100"`
	Description string  `json:"description"`
}

// DisplayPreference tells report consumers which fields to show.
type DisplayPreference struct {
	ShowPercentage bool `json:"showPercentage"`
	ShowGrade      bool `json:"showGrade"`
	ShowGPA        bool `json:"showGPA"`
	ShowPosition   bool `json:"showPosition"`
	ShowRemark     bool `json:"showRemark"`
}

// GradingConfig is a school's grade boundary table.
type GradingConfig struct {
	System            string            `json:"system" validate:"required"`
	GradeBoundaries   []GradeBoundary   `json:"gradeBoundaries" validate:"required,min=1,dive"`
	PassMark          float64           `json:"passMark" validate:"gte=0,lte=100"`
	DisplayPreference DisplayPreference `json:"displayPreference"`
}

// CalculateGrade returns the grade of the first boundary, in table order, whose
// inclusive range contains percentage.
func CalculateGrade(percentage float64, cfg GradingConfig) (string, error) {
	for _, b := range cfg.GradeBoundaries {
		if percentage >= b.MinScore && percentage <= b.MaxScore {
			return b.Grade, nil
		}
	}
	return "", &GradeResolutionError{Percentage: percentage}
}

// Validate checks that the boundary table covers [0, 100] without gaps. Adjacent
// boundaries may share an edge; the first listed wins there.
func (g GradingConfig) Validate() error {
	var problems []string
	if len(g.GradeBoundaries) == 0 {
		problems = append(problems, "at least one grade boundary is required")
	}
	if g.PassMark < 0 || g.PassMark > 100 {
		problems = append(problems, "passMark must be between 0 and 100")
	}
	for _, b := range g.GradeBoundaries {
		if b.Grade == "" {
			problems = append(problems, "grade label is required")
		}
		if b.MinScore < 0 || b.MaxScore > 100 || b.MinScore > b.MaxScore {
			problems = append(problems, fmt.Sprintf("grade %s has invalid range %s-%s", b.Grade, formatNumber(b.MinScore), formatNumber(b.MaxScore)))
		}
	}
	if len(problems) == 0 {
		problems = append(problems, coverageProblems(g.GradeBoundaries)...)
	}
	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

func coverageProblems(boundaries []GradeBoundary) []string {
	sorted := make([]GradeBoundary, len(boundaries))
	copy(sorted, boundaries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinScore < sorted[j].MinScore })

	var problems []string
	if sorted[0].MinScore > 0 {
		problems = append(problems, "grade boundaries must start at 0")
	}
	reach := sorted[0].MaxScore
	for _, b := range sorted[1:] {
		if b.MinScore > reach {
			problems = append(problems, fmt.Sprintf("gap between %s and %s", formatNumber(reach), formatNumber(b.MinScore)))
		}
		if b.MaxScore > reach {
			reach = b.MaxScore
		}
	}
	if reach < 100 {
		problems = append(problems, "grade boundaries must reach 100")
	}
	return problems
}

// WAECGradingConfig returns a fresh copy of the WAEC-style A1..F9 table. Ranges
// share their edges so fractional percentages resolve; higher grades are listed
// first and take the shared edge.
func WAECGradingConfig() GradingConfig {
	return GradingConfig{
		System: "letter",
		GradeBoundaries: []GradeBoundary{
			{Grade: "A1", MinScore: 75, MaxScore: 100, Description: "Excellent"},
			{Grade: "B2", MinScore: 70, MaxScore: 75, Description: "Very Good"},
			{Grade: "C4", MinScore: 60, MaxScore: 70, Description: "Good"},
			{Grade: "C6", MinScore: 50, MaxScore: 60, Description: "Credit"},
			{Grade: "D7", MinScore: 45, MaxScore: 50, Description: "Pass"},
			{Grade: "E8", MinScore: 40, MaxScore: 45, Description: "Pass"},
			{Grade: "F9", MinScore: 0, MaxScore: 40, Description: "Fail"},
		},
		PassMark: 40,
		DisplayPreference: DisplayPreference{
			ShowPercentage: true,
			ShowGrade:      true,
			ShowRemark:     true,
		},
	}
}

// OverallGrade classifies a term average on the WAEC scale using lower thresholds,
// so fractional averages such as 74.5 still resolve.
func OverallGrade(average float64) string {
	switch {
	case average >= 75:
		return "A1"
	case average >= 70:
		return "B2"
	case average >= 60:
		return "C4"
	case average >= 50:
		return "C6"
	case average >= 45:
		return "D7"
	case average >= 40:
		return "E8"
	default:
		return "F9"
	}
}

package scoring

import "fmt"

// ValidationResult carries user-facing score entry errors.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateScoreEntry checks one student's entry against cfg.
// CA components are checked in configured order, then the exam, then the project.
func ValidateScoreEntry(scores ScoreInput, cfg AssessmentConfig) ValidationResult {
	errs := make([]string, 0)
	for i, ca := range cfg.CAConfigs {
		errs = checkComponent(errs, scores, ca.Key(i), ca.Name, ca.MaxScore, !ca.IsOptional)
	}
	if cfg.Exam.Enabled {
		errs = checkComponent(errs, scores, ExamKey, "Exam", cfg.Exam.MaxScore, true)
	}
	if cfg.Project.Enabled {
		label := cfg.Project.Name
		if label == "" {
			label = "Project"
		}
		errs = checkComponent(errs, scores, ProjectKey, label, cfg.Project.MaxScore, !cfg.Project.IsOptional)
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func checkComponent(errs []string, scores ScoreInput, key, label string, maxScore float64, required bool) []string {
	v, ok := scores.Value(key)
	if !ok {
		if required {
			errs = append(errs, fmt.Sprintf("%s score is required", label))
		}
		return errs
	}
	if v < 0 {
		return append(errs, fmt.Sprintf("%s score cannot be negative", label))
	}
	if v > maxScore {
		errs = append(errs, fmt.Sprintf("%s score (%s) exceeds maximum (%s)", label, formatNumber(v), formatNumber(maxScore)))
	}
	return errs
}

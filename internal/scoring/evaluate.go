package scoring

// Evaluation bundles the three derived values of a score entry.
type Evaluation struct {
	Validation ValidationResult `json:"validation"`
	Totals     ScoreTotals      `json:"totals"`
	Grade      string           `json:"grade,omitempty"`
}

// Evaluate runs validation, calculation and grading in the order every call site uses.
// Totals are computed even for invalid entries so partial sheets can be previewed.
// The grade is left empty for invalid entries; a boundary miss on a valid entry is
// returned as *GradeResolutionError.
func Evaluate(scores ScoreInput, cfg AssessmentConfig, grading GradingConfig) (Evaluation, error) {
	eval := Evaluation{
		Validation: ValidateScoreEntry(scores, cfg),
		Totals:     CalculateTotalScore(scores, cfg),
	}
	if !eval.Validation.Valid {
		return eval, nil
	}
	grade, err := CalculateGrade(eval.Totals.Percentage, grading)
	if err != nil {
		return eval, err
	}
	eval.Grade = grade
	return eval, nil
}

// EffectiveMaxScore is the denominator a caller should display: the configured total
// for sum schemes, 100 for weighted ones.
func EffectiveMaxScore(cfg AssessmentConfig) float64 {
	if cfg.CalculationMethod == MethodWeightedAverage {
		return 100
	}
	return cfg.TotalMaxScore
}

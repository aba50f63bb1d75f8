package scoring

// ScoreInput maps component keys (ca1, exam, project, test-1, ...) to entered scores.
// A nil value means "not entered" and is treated exactly like a missing key.
type ScoreInput map[string]*float64

// Value returns the entered score for key, if any.
func (s ScoreInput) Value(key string) (float64, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// ScoreTotals is the arithmetic outcome for one student in one subject.
type ScoreTotals struct {
	TotalCA    float64 `json:"totalCa"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
	MaxScore   float64 `json:"maxScore"`
}

// CalculateTotalScore combines the entered scores according to cfg.
// It assumes validated input but tolerates missing or nil values, which count as
// not entered. Percentages are not rounded.
func CalculateTotalScore(scores ScoreInput, cfg AssessmentConfig) ScoreTotals {
	if cfg.CalculationMethod == MethodWeightedAverage {
		return calculateWeighted(scores, cfg)
	}
	return calculateSum(scores, cfg)
}

func calculateSum(scores ScoreInput, cfg AssessmentConfig) ScoreTotals {
	out := ScoreTotals{MaxScore: cfg.TotalMaxScore}
	for i, ca := range cfg.CAConfigs {
		if v, ok := scores.Value(ca.Key(i)); ok {
			out.TotalCA += v
		}
	}
	out.Total = out.TotalCA
	if cfg.Exam.Enabled {
		if v, ok := scores.Value(ExamKey); ok {
			out.Total += v
		}
	}
	if cfg.Project.Enabled {
		if v, ok := scores.Value(ProjectKey); ok {
			out.Total += v
		}
	}
	if cfg.TotalMaxScore > 0 {
		out.Percentage = out.Total / cfg.TotalMaxScore * 100
	}
	return out
}

func calculateWeighted(scores ScoreInput, cfg AssessmentConfig) ScoreTotals {
	out := ScoreTotals{MaxScore: cfg.TotalMaxScore}
	for i, ca := range cfg.CAConfigs {
		if v, ok := scores.Value(ca.Key(i)); ok {
			out.TotalCA += contribution(v, ca.MaxScore, ca.Weight)
		}
	}
	out.Total = out.TotalCA
	if cfg.Exam.Enabled {
		if v, ok := scores.Value(ExamKey); ok {
			out.Total += contribution(v, cfg.Exam.MaxScore, cfg.Exam.Weight)
		}
	}
	if cfg.Project.Enabled {
		if v, ok := scores.Value(ProjectKey); ok {
			out.Total += contribution(v, cfg.Project.MaxScore, cfg.Project.Weight)
		}
	}
	// weights are percentage points, so the total already is a percentage
	out.Percentage = out.Total
	return out
}

func contribution(value, maxScore float64, weight *float64) float64 {
	if weight == nil || maxScore <= 0 {
		return 0
	}
	return value / maxScore * *weight
}

package scoring

import "fmt"

// SubjectScore is the persisted per-subject outcome fed back into term aggregation.
type SubjectScore struct {
	SubjectID  string  `json:"subjectId"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
	MaxScore   float64 `json:"maxScore"`
	IsAbsent   bool    `json:"isAbsent"`
	IsExempted bool    `json:"isExempted"`
}

// TermResult summarises a student's subjects in one term.
type TermResult struct {
	AverageScore     float64 `json:"averageScore"`
	TotalScore       float64 `json:"totalScore"`
	NumberOfSubjects int     `json:"numberOfSubjects"`
	SubjectsPassed   int     `json:"subjectsPassed"`
	SubjectsFailed   int     `json:"subjectsFailed"`
}

// AttendancePolicy decides how absent and exempted subjects are aggregated.
type AttendancePolicy string

const (
	// AttendanceIncludeAll counts every subject, absent or not.
	AttendanceIncludeAll AttendancePolicy = "include_all"
	// AttendanceExcludeAbsent drops absent and exempted subjects from every figure.
	AttendanceExcludeAbsent AttendancePolicy = "exclude_absent"
)

// ParseAttendancePolicy accepts the configured policy name; empty means include_all.
func ParseAttendancePolicy(raw string) (AttendancePolicy, error) {
	switch AttendancePolicy(raw) {
	case "", AttendanceIncludeAll:
		return AttendanceIncludeAll, nil
	case AttendanceExcludeAbsent:
		return AttendanceExcludeAbsent, nil
	default:
		return "", &ConfigurationError{Problems: []string{fmt.Sprintf("unknown attendance policy %q", raw)}}
	}
}

// TermOptions parameterises CalculateTermResult.
type TermOptions struct {
	PassMark   float64
	Attendance AttendancePolicy
}

// CalculateTermResult aggregates already computed subject scores. It never
// re-derives anything from raw component scores.
func CalculateTermResult(scores []SubjectScore, opts TermOptions) TermResult {
	var (
		result        TermResult
		percentageSum float64
	)
	for _, s := range scores {
		if opts.Attendance == AttendanceExcludeAbsent && (s.IsAbsent || s.IsExempted) {
			continue
		}
		result.NumberOfSubjects++
		result.TotalScore += s.Total
		percentageSum += s.Percentage
		if s.Percentage >= opts.PassMark {
			result.SubjectsPassed++
		}
	}
	result.SubjectsFailed = result.NumberOfSubjects - result.SubjectsPassed
	if result.NumberOfSubjects > 0 {
		result.AverageScore = percentageSum / float64(result.NumberOfSubjects)
	}
	return result
}

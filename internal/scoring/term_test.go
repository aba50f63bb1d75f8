package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTermResultEmpty(t *testing.T) {
	result := CalculateTermResult(nil, TermOptions{PassMark: 40})

	assert.Equal(t, TermResult{}, result)
	assert.False(t, math.IsNaN(result.AverageScore))
}

func TestCalculateTermResult(t *testing.T) {
	scores := []SubjectScore{
		{SubjectID: "math", Total: 92, Percentage: 92},
		{SubjectID: "eng", Total: 30, Percentage: 30},
		{SubjectID: "bio", Total: 111, Percentage: 74, MaxScore: 150},
	}

	result := CalculateTermResult(scores, TermOptions{PassMark: 40})

	assert.Equal(t, 3, result.NumberOfSubjects)
	assert.InDelta(t, 233, result.TotalScore, 1e-9)
	assert.InDelta(t, 65.3333333, result.AverageScore, 1e-6)
	assert.Equal(t, 2, result.SubjectsPassed)
	assert.Equal(t, 1, result.SubjectsFailed)
}

func TestCalculateTermResultPassMarkInclusive(t *testing.T) {
	result := CalculateTermResult([]SubjectScore{{Percentage: 50}, {Percentage: 49.99}}, TermOptions{PassMark: 50})

	assert.Equal(t, 1, result.SubjectsPassed)
	assert.Equal(t, 1, result.SubjectsFailed)
}

func TestCalculateTermResultAttendancePolicies(t *testing.T) {
	scores := []SubjectScore{
		{SubjectID: "math", Total: 80, Percentage: 80},
		{SubjectID: "eng", Total: 0, Percentage: 0, IsAbsent: true},
		{SubjectID: "art", Total: 0, Percentage: 0, IsExempted: true},
	}

	all := CalculateTermResult(scores, TermOptions{PassMark: 40})
	assert.Equal(t, 3, all.NumberOfSubjects)
	assert.InDelta(t, 26.6666667, all.AverageScore, 1e-6)
	assert.Equal(t, 2, all.SubjectsFailed)

	present := CalculateTermResult(scores, TermOptions{PassMark: 40, Attendance: AttendanceExcludeAbsent})
	assert.Equal(t, 1, present.NumberOfSubjects)
	assert.InDelta(t, 80, present.AverageScore, 1e-9)
	assert.Equal(t, 1, present.SubjectsPassed)
	assert.Equal(t, 0, present.SubjectsFailed)
}

func TestCalculateTermResultAllAbsentExcluded(t *testing.T) {
	result := CalculateTermResult([]SubjectScore{{IsAbsent: true}}, TermOptions{PassMark: 40, Attendance: AttendanceExcludeAbsent})

	assert.Equal(t, TermResult{}, result)
}

func TestParseAttendancePolicy(t *testing.T) {
	policy, err := ParseAttendancePolicy("")
	require.NoError(t, err)
	assert.Equal(t, AttendanceIncludeAll, policy)

	policy, err = ParseAttendancePolicy("exclude_absent")
	require.NoError(t, err)
	assert.Equal(t, AttendanceExcludeAbsent, policy)

	_, err = ParseAttendancePolicy("weighted")
	require.Error(t, err)
}

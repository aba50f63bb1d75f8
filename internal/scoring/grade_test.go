package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateGradeBoundaries(t *testing.T) {
	cfg := WAECGradingConfig()
	cases := []struct {
		percentage float64
		want       string
	}{
		{100, "A1"},
		{75, "A1"},
		{74.5, "B2"},
		{74, "B2"},
		{70, "B2"},
		{69.5, "C4"},
		{69, "C4"},
		{60, "C4"},
		{50, "C6"},
		{45, "D7"},
		{44.5, "E8"},
		{40, "E8"},
		{39.5, "F9"},
		{39, "F9"},
		{0, "F9"},
	}
	for _, tc := range cases {
		grade, err := CalculateGrade(tc.percentage, cfg)
		require.NoError(t, err)
		assert.Equal(t, tc.want, grade, "percentage %v", tc.percentage)
	}
}

func TestCalculateGradeUnsortedTable(t *testing.T) {
	cfg := GradingConfig{System: "letter", GradeBoundaries: []GradeBoundary{
		{Grade: "F", MinScore: 0, MaxScore: 49},
		{Grade: "A", MinScore: 80, MaxScore: 100},
		{Grade: "B", MinScore: 50, MaxScore: 79},
	}}

	grade, err := CalculateGrade(85, cfg)
	require.NoError(t, err)
	assert.Equal(t, "A", grade)
}

func TestCalculateGradeOverlapUsesTableOrder(t *testing.T) {
	cfg := GradingConfig{System: "letter", GradeBoundaries: []GradeBoundary{
		{Grade: "B", MinScore: 60, MaxScore: 80},
		{Grade: "A", MinScore: 80, MaxScore: 100},
	}}

	grade, err := CalculateGrade(80, cfg)
	require.NoError(t, err)
	assert.Equal(t, "B", grade)
}

func TestCalculateGradeNoMatch(t *testing.T) {
	cfg := GradingConfig{System: "letter", GradeBoundaries: []GradeBoundary{
		{Grade: "A", MinScore: 75, MaxScore: 100},
		{Grade: "B", MinScore: 0, MaxScore: 74},
	}}
	_, err := CalculateGrade(74.5, cfg)

	var resolution *GradeResolutionError
	require.True(t, errors.As(err, &resolution))
	assert.Equal(t, 74.5, resolution.Percentage)
	assert.Contains(t, err.Error(), "74.5")
}

func TestGradingConfigValidate(t *testing.T) {
	require.NoError(t, WAECGradingConfig().Validate())

	gap := GradingConfig{System: "letter", PassMark: 50, GradeBoundaries: []GradeBoundary{
		{Grade: "F", MinScore: 0, MaxScore: 40},
		{Grade: "A", MinScore: 60, MaxScore: 100},
	}}
	err := gap.Validate()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Problems, "gap between 40 and 60")

	integerEdges := GradingConfig{System: "letter", GradeBoundaries: []GradeBoundary{
		{Grade: "B", MinScore: 0, MaxScore: 74},
		{Grade: "A", MinScore: 75, MaxScore: 100},
	}}
	err = integerEdges.Validate()
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Problems, "gap between 74 and 75")

	short := GradingConfig{System: "letter", GradeBoundaries: []GradeBoundary{{Grade: "A", MinScore: 10, MaxScore: 90}}}
	err = short.Validate()
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Problems, "grade boundaries must start at 0")
	assert.Contains(t, cfgErr.Problems, "grade boundaries must reach 100")

	inverted := GradingConfig{System: "letter", GradeBoundaries: []GradeBoundary{{Grade: "A", MinScore: 90, MaxScore: 10}}}
	require.Error(t, inverted.Validate())

	require.Error(t, GradingConfig{System: "letter"}.Validate())
}

func TestWAECGradingConfigReturnsCopy(t *testing.T) {
	cfg := WAECGradingConfig()
	cfg.GradeBoundaries[0].Grade = "X"

	assert.Equal(t, "A1", WAECGradingConfig().GradeBoundaries[0].Grade)
}

func TestOverallGrade(t *testing.T) {
	cases := map[float64]string{
		100:   "A1",
		75:    "A1",
		74.5:  "B2",
		70:    "B2",
		60:    "C4",
		55:    "C6",
		45:    "D7",
		40:    "E8",
		39.99: "F9",
		0:     "F9",
	}
	for avg, want := range cases {
		assert.Equal(t, want, OverallGrade(avg), "average %v", avg)
	}
}

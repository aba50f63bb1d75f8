package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigurationError signals an authoring bug in a school's assessment or grading setup.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "invalid configuration"
	}
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// GradeResolutionError is returned when no grade boundary contains a percentage.
type GradeResolutionError struct {
	Percentage float64
}

func (e *GradeResolutionError) Error() string {
	return fmt.Sprintf("no grade boundary matches percentage %s", formatNumber(e.Percentage))
}

// formatNumber renders a float in its shortest form: 12, 10.5, 0.25.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

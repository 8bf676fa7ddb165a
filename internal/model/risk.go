package model

import (
	"fmt"
	"strings"
)

// RiskLevel represents the severity of a compliance issue.
// Values are ordered so that a higher value is a more severe risk.
type RiskLevel int

const (
	// RiskLow is a minor finding or best-practice recommendation.
	RiskLow RiskLevel = iota

	// RiskMedium should be addressed but is not an immediate violation.
	RiskMedium

	// RiskHigh is a likely GDPR or ePrivacy violation.
	RiskHigh

	// RiskCritical is a clear violation that needs immediate action.
	RiskCritical
)

// String returns the upper-case name of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseRiskLevel converts a risk name (case-insensitive) to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLow, nil
	case "MEDIUM":
		return RiskMedium, nil
	case "HIGH":
		return RiskHigh, nil
	case "CRITICAL":
		return RiskCritical, nil
	default:
		return RiskLow, fmt.Errorf("unknown risk level %q", s)
	}
}

// MarshalText encodes the risk level by name so JSON output stays readable.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a risk level name.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// Deduction returns the number of score points an issue of this level costs.
func (r RiskLevel) Deduction() int {
	switch r {
	case RiskCritical:
		return 30
	case RiskHigh:
		return 20
	case RiskMedium:
		return 10
	case RiskLow:
		return 5
	default:
		return 0
	}
}

package model

import (
	"encoding/json"
	"testing"
)

// TestRiskLevelString tests the String method of RiskLevel.
func TestRiskLevelString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		level    RiskLevel
		expected string
	}{
		{RiskLow, "LOW"},
		{RiskMedium, "MEDIUM"},
		{RiskHigh, "HIGH"},
		{RiskCritical, "CRITICAL"},
		{RiskLevel(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.level.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.level.String(), tc.expected)
			}
		})
	}
}

// TestParseRiskLevel tests parsing of risk level names.
func TestParseRiskLevel(t *testing.T) {
	t.Parallel()

	t.Run("names are case-insensitive", func(t *testing.T) {
		t.Parallel()
		level, err := ParseRiskLevel(" high ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level != RiskHigh {
			t.Errorf("expected HIGH, got %s", level)
		}
	})

	t.Run("unknown name returns error", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseRiskLevel("INFO"); err == nil {
			t.Error("expected error for unknown risk level")
		}
	})
}

// TestRiskLevelOrdering verifies that more severe levels compare greater.
func TestRiskLevelOrdering(t *testing.T) {
	t.Parallel()

	if !(RiskLow < RiskMedium && RiskMedium < RiskHigh && RiskHigh < RiskCritical) {
		t.Error("risk levels are not ordered by severity")
	}
}

// TestRiskLevelDeduction tests the score deductions per level.
func TestRiskLevelDeduction(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		level    RiskLevel
		expected int
	}{
		{RiskCritical, 30},
		{RiskHigh, 20},
		{RiskMedium, 10},
		{RiskLow, 5},
		{RiskLevel(-1), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.level.String(), func(t *testing.T) {
			t.Parallel()
			if got := tc.level.Deduction(); got != tc.expected {
				t.Errorf("got %d, expected %d", got, tc.expected)
			}
		})
	}
}

// TestScanIssueJSON verifies that risk levels serialize by name.
func TestScanIssueJSON(t *testing.T) {
	t.Parallel()

	issue := NewIssue(CodeCookieWall, RiskCritical, "Cookie wall", "desc", "rec")

	data, err := json.Marshal(issue)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["risk_level"] != "CRITICAL" {
		t.Errorf("expected risk_level CRITICAL, got %v", decoded["risk_level"])
	}
	if decoded["code"] != "COOKIE_WALL" {
		t.Errorf("expected code COOKIE_WALL, got %v", decoded["code"])
	}

	var back ScanIssue
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal into ScanIssue failed: %v", err)
	}
	if back.RiskLevel != RiskCritical {
		t.Errorf("expected RiskCritical after round trip, got %s", back.RiskLevel)
	}
}

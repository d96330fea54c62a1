package config

import (
	"os"
	"strconv"
	"strings"
)

// InsightRuleDisabled reports whether a detection rule has been switched off
// for this deployment.
//
// Set via env:
// - INSIGHT_RULES_DISABLED="renewal-rate-drop,low-branch-attendance"
//
// Rule keys are case-insensitive.
func InsightRuleDisabled(rule string) bool {
	rule = strings.ToLower(strings.TrimSpace(rule))
	if rule == "" {
		return false
	}
	raw := os.Getenv("INSIGHT_RULES_DISABLED")
	if strings.TrimSpace(raw) == "" {
		return false
	}
	for _, part := range strings.Split(raw, ",") {
		if strings.ToLower(strings.TrimSpace(part)) == rule {
			return true
		}
	}
	return false
}

// AttendancePastEditDays bounds how far back presence marks may still be toggled.
// 0 (default) means no bound.
//
// Set via env:
// - ATTENDANCE_PAST_EDIT_DAYS=30
func AttendancePastEditDays() int {
	v := strings.TrimSpace(os.Getenv("ATTENDANCE_PAST_EDIT_DAYS"))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

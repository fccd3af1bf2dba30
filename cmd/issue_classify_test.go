package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIssueType(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		// Bug keywords
		{"Fix login bug", "bug"},
		{"fix broken authentication", "bug"},
		{"Crash on startup", "bug"},
		{"Error handling in API", "bug"},
		{"Regression in search results", "bug"},
		{"Login fails intermittently", "bug"},
		{"Fault in payment processing", "bug"},
		{"Defect in report generation", "bug"},
		{"Issue with dashboard loading", "bug"},
		{"Upload not working", "bug"},

		// Spike keywords
		{"Investigate slow queries", "spike"},
		{"Research caching options", "spike"},
		{"Evaluate queue libraries", "spike"},
		{"Prototype the sync flow", "spike"},
		{"Spike: streaming API", "spike"},

		// Story keywords
		{"As a user I want saved searches", "story"},
		{"Implement user profiles", "story"},
		{"Add support for CSV export", "story"},
		{"Allow users to pin dashboards", "story"},

		// Task (default)
		{"Update documentation", "task"},
		{"Rename user service", "task"},
		{"Bump Go to 1.23", "task"},

		// Case insensitivity
		{"FIX the broken thing", "bug"},
		{"INVESTIGATE the module", "spike"},

		// "fix" at end of string
		{"Minor cosmetic button fix", "bug"},
		// "fix:" variant
		{"Fix: broken auth flow", "bug"},

		// Bug takes precedence over spike
		{"Fix the investigation script", "bug"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyIssueType(tt.title))
		})
	}
}

func TestClassifyIssuePriority(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		// Critical
		{"Critical: database corruption", "critical"},
		{"Data loss when saving forms", "critical"},
		{"Production down", "critical"},
		{"P0: system outage", "critical"},
		{"Security vulnerability in API", "critical"},

		// High
		{"Urgent fix needed for auth", "high"},
		{"Blocker for release", "high"},
		{"App crash on login", "high"},
		{"P1: degraded performance", "high"},

		// Low
		{"Minor UI alignment issue", "low"},
		{"Nice to have: dark mode toggle animation", "low"},
		{"Cosmetic fix for button color", "low"},
		{"Trivial typo in tooltip", "low"},
		{"Low priority: update footer text", "low"},
		{"Cleanup unused CSS classes", "low"},

		// Medium (default)
		{"Add user profiles", "medium"},
		{"Implement search", "medium"},
		{"Update documentation", "medium"},

		// Case insensitivity
		{"CRITICAL outage", "critical"},
		{"MINOR text change", "low"},

		// Critical takes precedence over high and low
		{"Critical cleanup needed", "critical"},
		{"Urgent cleanup needed", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyIssuePriority(tt.title))
		})
	}
}

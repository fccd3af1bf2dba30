package cmd

import "strings"

// classifyIssueType infers the issue type from the title using keyword heuristics.
// Bug keywords are checked before task keywords (e.g., "fix the migration" = bug).
// Defaults to "task" if no keywords match.
func classifyIssueType(title string) string {
	lower := strings.ToLower(title)

	// Multi-word phrases checked first, then single words with common variants.
	bugPhrases := []string{
		"issue with", "not working",
	}
	for _, kw := range bugPhrases {
		if strings.Contains(lower, kw) {
			return "bug"
		}
	}

	bugWords := []string{
		"fix ", "fix:", "fixed", "fixes", "fixing",
		"bug", "broken", "crash", "error",
		"regression", "fail", "fault", "defect",
	}
	for _, kw := range bugWords {
		if strings.Contains(lower, kw) {
			return "bug"
		}
	}
	// "fix" at end of string
	if strings.HasSuffix(lower, "fix") {
		return "bug"
	}

	spikeKeywords := []string{
		"investigate", "research", "explore", "evaluate",
		"prototype", "proof of concept", "poc", "spike",
	}
	for _, kw := range spikeKeywords {
		if strings.Contains(lower, kw) {
			return "spike"
		}
	}

	storyKeywords := []string{
		"as a user", "as an admin", "feature", "implement",
		"add support", "enable", "allow users",
	}
	for _, kw := range storyKeywords {
		if strings.Contains(lower, kw) {
			return "story"
		}
	}

	return "task"
}

// classifyIssuePriority infers the issue priority from the title using keyword heuristics.
// Critical keywords are checked before high, high before low. Defaults to "medium".
func classifyIssuePriority(title string) string {
	lower := strings.ToLower(title)

	criticalKeywords := []string{
		"critical", "data loss", "production down", "outage",
		"security", "p0",
	}
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return "critical"
		}
	}

	highKeywords := []string{
		"urgent", "blocker", "crash", "asap", "p1",
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return "high"
		}
	}

	lowKeywords := []string{
		"minor", "nice to have", "cosmetic", "trivial",
		"low priority", "cleanup", "clean up",
	}
	for _, kw := range lowKeywords {
		if strings.Contains(lower, kw) {
			return "low"
		}
	}

	return "medium"
}

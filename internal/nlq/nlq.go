// Package nlq maps a fixed vocabulary of free-text questions onto issue
// queries. It is a bounded pattern-to-filter mapper, not a language model:
// matching is an ordered rule table, first match wins per category, and
// anything outside the vocabulary fails with ErrUnrecognized.
//
// Vocabulary (trigger -> effect):
//
//	how many / count / number of        count result instead of a list
//	summary / summarize / overview /
//	stats                               aggregate stats result
//	assigned to X, X's tasks/issues,
//	what is X working on               assignee filter (bare or quoted name)
//	created by / filed by /
//	authored by / reported by X         author filter
//	sprint N / iteration N /
//	milestone N                         iteration filter
//	blocked / stuck                     status blocked
//	in progress / working on / active   status in_progress
//	closed / completed / done /
//	finished / resolved                 closed set (done + closed)
//	open / remaining / left / todo /
//	pending                             open set
//	bugs / stories / tasks / spikes /
//	epics                               type filter
//	labeled X / tagged X                label filter
//	critical / high priority /
//	low priority                        priority filter
//	all / everything                    the full set (no filter)
package nlq

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joescharf/sprint/internal/models"
	"github.com/joescharf/sprint/internal/query"
)

// ErrUnrecognized means no rule matched the question. The wrapping error
// carries the original text so callers can decide fallback behavior.
var ErrUnrecognized = errors.New("unrecognized query")

// ResultKind tags which Result field is populated.
type ResultKind int

const (
	KindIssues ResultKind = iota
	KindCount
	KindStats
	// KindValue carries a numeric board-level answer (e.g. average
	// velocity). The issue-level interpreter never produces it.
	KindValue
)

// Result is the answer to a question: an issue list, an integer count,
// aggregate stats, or a board-level numeric value, mirroring the shape of
// the equivalent direct query call.
type Result struct {
	Kind   ResultKind
	Issues []*models.Issue
	Count  int
	Stats  query.Stats
	Value  float64
}

// parsedQuery is the structured form a question reduces to before execution.
type parsedQuery struct {
	kind      ResultKind
	assignee  string
	author    string
	iteration string
	status    string // "open", "closed", "blocked", "in_progress"
	issueType models.IssueType
	priority  models.IssuePriority
	label     string
	all       bool
}

// matched reports whether any filter (or the wildcard) was extracted.
// A bare result-kind trigger with nothing to apply it to is not a match,
// except stats, which is meaningful over the full set.
func (p *parsedQuery) matched() bool {
	return p.assignee != "" || p.author != "" || p.iteration != "" ||
		p.status != "" || p.issueType != "" || p.priority != "" ||
		p.label != "" || p.all || p.kind == KindStats
}

// rule is one trigger pattern plus the extraction it performs.
type rule struct {
	name  string
	re    *regexp.Regexp
	apply func(p *parsedQuery, m []string)
}

// Words that the loose \w+ captures can pick up but never name a person.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "in": true, "on": true,
	"what": true, "show": true, "all": true, "is": true, "are": true,
	"who": true, "everyone": true, "anyone": true, "me": true, "issues": true,
}

func setAssignee(p *parsedQuery, m []string) {
	if p.assignee == "" && !stopwords[m[1]] {
		p.assignee = m[1]
	}
}

// Rule tables. Order matters within each table: the first matching rule in
// a table wins and the rest are skipped.
var (
	kindRules = []rule{
		{"count", regexp.MustCompile(`\b(?:how many|count|number of)\b`),
			func(p *parsedQuery, m []string) { p.kind = KindCount }},
		{"stats", regexp.MustCompile(`\b(?:summary|summarize|overview|stats)\b`),
			func(p *parsedQuery, m []string) { p.kind = KindStats }},
	}

	assigneeRules = []rule{
		{"assigned-to", regexp.MustCompile(`(?:assigned to|assignee[:\s])\s*["']?(\w+)["']?`), setAssignee},
		{"working-what", regexp.MustCompile(`what(?:'s| is| are)\s+(\w+)\s+working`), setAssignee},
		{"working-is", regexp.MustCompile(`(\w+)\s+is\s+working`), setAssignee},
		{"possessive", regexp.MustCompile(`(\w+)'s\s+(?:tasks|issues|work|items)`), setAssignee},
	}

	authorRules = []rule{
		{"authored-by", regexp.MustCompile(`(?:created by|filed by|authored by|reported by|author[:\s])\s*["']?(\w+)["']?`),
			func(p *parsedQuery, m []string) { p.author = m[1] }},
	}

	iterationRules = []rule{
		{"iteration", regexp.MustCompile(`((?:sprint|iteration|milestone)\s*\d+)`),
			func(p *parsedQuery, m []string) { p.iteration = m[1] }},
	}

	statusRules = []rule{
		{"blocked", regexp.MustCompile(`\b(?:blocked|stuck)\b`),
			func(p *parsedQuery, m []string) { p.status = "blocked" }},
		{"in-progress", regexp.MustCompile(`\bin[\s_-]progress\b|\bworking on\b|\bactive\b`),
			func(p *parsedQuery, m []string) { p.status = "in_progress" }},
		{"closed", regexp.MustCompile(`\b(?:close|closed|completed?|done|finished|resolved)\b`),
			func(p *parsedQuery, m []string) { p.status = "closed" }},
		{"open", regexp.MustCompile(`\b(?:open|remaining|left|todo|pending)\b`),
			func(p *parsedQuery, m []string) { p.status = "open" }},
	}

	typeRules = []rule{
		{"bug", regexp.MustCompile(`\bbugs?\b`),
			func(p *parsedQuery, m []string) { p.issueType = models.IssueTypeBug }},
		{"story", regexp.MustCompile(`\bstor(?:y|ies)\b`),
			func(p *parsedQuery, m []string) { p.issueType = models.IssueTypeStory }},
		{"task", regexp.MustCompile(`\btasks?\b`),
			func(p *parsedQuery, m []string) { p.issueType = models.IssueTypeTask }},
		{"spike", regexp.MustCompile(`\bspikes?\b`),
			func(p *parsedQuery, m []string) { p.issueType = models.IssueTypeSpike }},
		{"epic", regexp.MustCompile(`\bepics?\b`),
			func(p *parsedQuery, m []string) { p.issueType = models.IssueTypeEpic }},
	}

	labelRules = []rule{
		{"labeled", regexp.MustCompile(`(?:labell?ed|tagged|with label|with tag)\s+["']?(\w+)["']?`),
			func(p *parsedQuery, m []string) { p.label = m[1] }},
	}

	priorityRules = []rule{
		{"critical", regexp.MustCompile(`\bcritical\b`),
			func(p *parsedQuery, m []string) { p.priority = models.IssuePriorityCritical }},
		{"high", regexp.MustCompile(`\bhigh[\s-]priority\b`),
			func(p *parsedQuery, m []string) { p.priority = models.IssuePriorityHigh }},
		{"low", regexp.MustCompile(`\blow[\s-]priority\b`),
			func(p *parsedQuery, m []string) { p.priority = models.IssuePriorityLow }},
	}

	wildcardRules = []rule{
		{"all", regexp.MustCompile(`\b(?:all|everything)\b`),
			func(p *parsedQuery, m []string) { p.all = true }},
	}
)

// tables is the full interpreter, in evaluation order.
var tables = [][]rule{
	kindRules,
	assigneeRules,
	authorRules,
	iterationRules,
	statusRules,
	typeRules,
	labelRules,
	priorityRules,
	wildcardRules,
}

// parse reduces a question to a parsedQuery by running every rule table.
func parse(question string) *parsedQuery {
	q := strings.ToLower(strings.TrimSpace(question))
	p := &parsedQuery{kind: KindIssues}
	for _, table := range tables {
		for _, r := range table {
			if m := r.re.FindStringSubmatch(q); m != nil {
				r.apply(p, m)
				break
			}
		}
	}
	return p
}

// build translates a parsedQuery into an issue query over the given set.
func (p *parsedQuery) build(issues []*models.Issue) *query.Query {
	q := query.New(issues)
	if p.assignee != "" {
		q = q.Assignee(p.assignee)
	}
	if p.author != "" {
		q = q.Author(p.author)
	}
	if p.iteration != "" {
		q = q.Iteration(p.iteration)
	}
	switch p.status {
	case "open":
		q = q.IsOpen()
	case "closed":
		q = q.IsClosed()
	case "blocked":
		q = q.IsBlocked()
	case "in_progress":
		q = q.Status(models.IssueStatusInProgress)
	}
	if p.issueType != "" {
		q = q.Type(p.issueType)
	}
	if p.label != "" {
		q = q.Label(p.label)
	}
	if p.priority != "" {
		q = q.Priority(p.priority)
	}
	return q
}

// Ask answers a question over the given issues. It returns ErrUnrecognized
// (wrapping the original text) when no rule extracted anything; the caller
// decides what to do with unmatched input.
func Ask(question string, issues []*models.Issue) (Result, error) {
	p := parse(question)
	if !p.matched() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnrecognized, question)
	}

	q := p.build(issues)
	switch p.kind {
	case KindCount:
		n, err := q.Count()
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindCount, Count: n}, nil
	case KindStats:
		s, err := q.Stats()
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindStats, Stats: s}, nil
	default:
		out, err := q.Execute()
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindIssues, Issues: out}, nil
	}
}

// Package query implements a fluent, immutable filter/sort/limit pipeline
// over issue collections. Every chained call returns a derived query; the
// source slice is shared read-only and never mutated. Filters compose as a
// conjunction and are applied lazily at the terminal calls (Execute, Count,
// Stats, ...). Variadic filters (Status, Type, Priority) OR their arguments
// within the single filter they add.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joescharf/sprint/internal/models"
)

// Predicate is a single filter over one issue.
type Predicate func(*models.Issue) bool

// Less orders two issues for sorting.
type Less func(a, b *models.Issue) bool

// Query is an immutable filter/sort/limit descriptor over a fixed issue
// sequence. The zero limit/offset values mean "unset".
type Query struct {
	issues  []*models.Issue
	filters []Predicate
	less    Less
	limit   int // -1 = no limit
	offset  int
	err     error
}

// New creates a query over the given issues. The slice is shared, not
// copied; callers must not mutate it while the query is in use.
func New(issues []*models.Issue) *Query {
	return &Query{issues: issues, limit: -1}
}

// clone derives a new query sharing the source slice. The filter slice is
// copied so appending to the child never leaks into the parent.
func (q *Query) clone() *Query {
	nq := &Query{
		issues: q.issues,
		less:   q.less,
		limit:  q.limit,
		offset: q.offset,
		err:    q.err,
	}
	nq.filters = make([]Predicate, len(q.filters), len(q.filters)+1)
	copy(nq.filters, q.filters)
	return nq
}

func (q *Query) withFilter(p Predicate) *Query {
	nq := q.clone()
	nq.filters = append(nq.filters, p)
	return nq
}

// ---------------------------------------------------------------------------
// Status filters
// ---------------------------------------------------------------------------

// IsOpen keeps issues that are not done or closed.
func (q *Query) IsOpen() *Query {
	return q.withFilter(func(i *models.Issue) bool { return i.IsOpen() })
}

// IsClosed keeps done and closed issues.
func (q *Query) IsClosed() *Query {
	return q.withFilter(func(i *models.Issue) bool { return i.IsClosed() })
}

// IsBlocked keeps blocked issues.
func (q *Query) IsBlocked() *Query {
	return q.withFilter(func(i *models.Issue) bool { return i.IsBlocked() })
}

// Status keeps issues whose status matches any of the given statuses.
func (q *Query) Status(statuses ...models.IssueStatus) *Query {
	nq := q.withFilter(func(i *models.Issue) bool {
		for _, s := range statuses {
			if i.Status == s {
				return true
			}
		}
		return false
	})
	for _, s := range statuses {
		if _, err := models.ParseStatus(string(s)); err != nil && nq.err == nil {
			nq.err = err
		}
	}
	return nq
}

// ---------------------------------------------------------------------------
// People filters
// ---------------------------------------------------------------------------

// Assignee keeps issues assigned to the named person (case-insensitive
// substring match, so "emily" matches "Emily Chen").
func (q *Query) Assignee(name string) *Query {
	needle := strings.ToLower(name)
	return q.withFilter(func(i *models.Issue) bool {
		return i.Assignee != "" && strings.Contains(strings.ToLower(i.Assignee), needle)
	})
}

// Author keeps issues created by the named person (case-insensitive
// substring match).
func (q *Query) Author(name string) *Query {
	needle := strings.ToLower(name)
	return q.withFilter(func(i *models.Issue) bool {
		return i.Author != "" && strings.Contains(strings.ToLower(i.Author), needle)
	})
}

// Unassigned keeps issues with no assignee.
func (q *Query) Unassigned() *Query {
	return q.withFilter(func(i *models.Issue) bool { return i.Assignee == "" })
}

// ---------------------------------------------------------------------------
// Type filters
// ---------------------------------------------------------------------------

// Type keeps issues whose type matches any of the given types.
func (q *Query) Type(types ...models.IssueType) *Query {
	nq := q.withFilter(func(i *models.Issue) bool {
		for _, t := range types {
			if i.Type == t {
				return true
			}
		}
		return false
	})
	for _, t := range types {
		if _, err := models.ParseType(string(t)); err != nil && nq.err == nil {
			nq.err = err
		}
	}
	return nq
}

// Bugs keeps bugs only.
func (q *Query) Bugs() *Query { return q.Type(models.IssueTypeBug) }

// Stories keeps user stories only.
func (q *Query) Stories() *Query { return q.Type(models.IssueTypeStory) }

// Tasks keeps tasks only.
func (q *Query) Tasks() *Query { return q.Type(models.IssueTypeTask) }

// ---------------------------------------------------------------------------
// Priority filters
// ---------------------------------------------------------------------------

// Priority keeps issues whose priority matches any of the given priorities.
func (q *Query) Priority(priorities ...models.IssuePriority) *Query {
	nq := q.withFilter(func(i *models.Issue) bool {
		for _, p := range priorities {
			if i.Priority == p {
				return true
			}
		}
		return false
	})
	for _, p := range priorities {
		if _, err := models.ParsePriority(string(p)); err != nil && nq.err == nil {
			nq.err = err
		}
	}
	return nq
}

// Critical keeps critical priority issues.
func (q *Query) Critical() *Query { return q.Priority(models.IssuePriorityCritical) }

// HighPriority keeps critical and high priority issues. The union lives
// inside one filter, so it still ANDs cleanly with the rest of the chain.
func (q *Query) HighPriority() *Query {
	return q.Priority(models.IssuePriorityCritical, models.IssuePriorityHigh)
}

// ---------------------------------------------------------------------------
// Label and iteration filters
// ---------------------------------------------------------------------------

// Label keeps issues carrying the label (case-insensitive).
func (q *Query) Label(label string) *Query {
	return q.withFilter(func(i *models.Issue) bool { return i.HasLabel(label) })
}

// Labels keeps issues carrying at least one of the given labels
// (case-insensitive, OR within this one call).
func (q *Query) Labels(labels ...string) *Query {
	return q.withFilter(func(i *models.Issue) bool {
		for _, l := range labels {
			if i.HasLabel(l) {
				return true
			}
		}
		return false
	})
}

// AllLabels keeps issues carrying every one of the given labels.
func (q *Query) AllLabels(labels ...string) *Query {
	return q.withFilter(func(i *models.Issue) bool {
		for _, l := range labels {
			if !i.HasLabel(l) {
				return false
			}
		}
		return true
	})
}

// Iteration keeps issues belonging to the named iteration (case-insensitive
// substring match, so "sprint 3" matches "Sprint 3 - Hardening").
func (q *Query) Iteration(name string) *Query {
	needle := strings.ToLower(name)
	return q.withFilter(func(i *models.Issue) bool {
		return i.Iteration != "" && strings.Contains(strings.ToLower(i.Iteration), needle)
	})
}

// Where adds a custom filter predicate.
func (q *Query) Where(p Predicate) *Query {
	return q.withFilter(p)
}

// ---------------------------------------------------------------------------
// Sorting
// ---------------------------------------------------------------------------

func (q *Query) withLess(less Less) *Query {
	nq := q.clone()
	nq.less = less
	return nq
}

// ByPriority sorts by priority severity, critical first. The sort is
// stable: ties keep their original order.
func (q *Query) ByPriority() *Query {
	return q.withLess(func(a, b *models.Issue) bool {
		return models.PriorityRank(a.Priority) < models.PriorityRank(b.Priority)
	})
}

// ByPoints sorts by story points, largest first.
func (q *Query) ByPoints() *Query {
	return q.withLess(func(a, b *models.Issue) bool { return a.StoryPoints > b.StoryPoints })
}

// ByCreated sorts by creation time, newest first.
func (q *Query) ByCreated() *Query {
	return q.withLess(func(a, b *models.Issue) bool { return a.CreatedAt.After(b.CreatedAt) })
}

// ByUpdated sorts by last update time, newest first.
func (q *Query) ByUpdated() *Query {
	return q.withLess(func(a, b *models.Issue) bool { return a.UpdatedAt.After(b.UpdatedAt) })
}

// OrderBy sorts by a custom comparison.
func (q *Query) OrderBy(less Less) *Query {
	return q.withLess(less)
}

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

// Limit caps the number of results. Negative values surface an
// ErrInvalidArgument at the terminal call.
func (q *Query) Limit(n int) *Query {
	nq := q.clone()
	if n < 0 {
		if nq.err == nil {
			nq.err = fmt.Errorf("%w: limit must be >= 0, got %d", models.ErrInvalidArgument, n)
		}
		return nq
	}
	nq.limit = n
	return nq
}

// Offset skips the first n results. Negative values surface an
// ErrInvalidArgument at the terminal call.
func (q *Query) Offset(n int) *Query {
	nq := q.clone()
	if n < 0 {
		if nq.err == nil {
			nq.err = fmt.Errorf("%w: offset must be >= 0, got %d", models.ErrInvalidArgument, n)
		}
		return nq
	}
	nq.offset = n
	return nq
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// filtered returns the conjunction of all filters in source order.
func (q *Query) filtered() []*models.Issue {
	out := make([]*models.Issue, 0, len(q.issues))
outer:
	for _, issue := range q.issues {
		for _, f := range q.filters {
			if !f(issue) {
				continue outer
			}
		}
		out = append(out, issue)
	}
	return out
}

// Execute applies filters, then sort, then offset/limit, and returns the
// matching issues as a fresh slice.
func (q *Query) Execute() ([]*models.Issue, error) {
	if q.err != nil {
		return nil, q.err
	}
	results := q.filtered()
	if q.less != nil {
		less := q.less
		sort.SliceStable(results, func(a, b int) bool { return less(results[a], results[b]) })
	}
	if q.offset > 0 {
		if q.offset >= len(results) {
			return []*models.Issue{}, nil
		}
		results = results[q.offset:]
	}
	if q.limit >= 0 && q.limit < len(results) {
		results = results[:q.limit]
	}
	return results, nil
}

// Count returns the number of matching issues, ignoring sort and limit.
func (q *Query) Count() (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	return len(q.filtered()), nil
}

// Exists reports whether any issue matches.
func (q *Query) Exists() (bool, error) {
	n, err := q.Count()
	return n > 0, err
}

// First returns the first matching issue after sorting, or nil when nothing
// matches.
func (q *Query) First() (*models.Issue, error) {
	results, err := q.Limit(1).Execute()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Stats holds aggregate statistics for a filtered issue set.
type Stats struct {
	Total        int `json:"total"`
	Open         int `json:"open"`
	Closed       int `json:"closed"`
	Blocked      int `json:"blocked"`
	Points       int `json:"points"`
	OpenPoints   int `json:"open_points"`
	ClosedPoints int `json:"closed_points"`
}

// Stats aggregates over the full filtered set. Sort, offset, and limit are
// display concerns and deliberately do not change the numbers.
func (q *Query) Stats() (Stats, error) {
	if q.err != nil {
		return Stats{}, q.err
	}
	var s Stats
	for _, i := range q.filtered() {
		s.Total++
		s.Points += i.StoryPoints
		if i.IsOpen() {
			s.Open++
			s.OpenPoints += i.StoryPoints
		} else {
			s.Closed++
			s.ClosedPoints += i.StoryPoints
		}
		if i.IsBlocked() {
			s.Blocked++
		}
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Grouping
// ---------------------------------------------------------------------------

// UnassignedKey is the reserved group for issues without an assignee.
const UnassignedKey = "unassigned"

// GroupBy partitions the matching issues by a custom key. Group members keep
// their result order.
func (q *Query) GroupBy(key func(*models.Issue) string) (map[string][]*models.Issue, error) {
	results, err := q.Execute()
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]*models.Issue)
	for _, i := range results {
		k := key(i)
		groups[k] = append(groups[k], i)
	}
	return groups, nil
}

// GroupByAssignee partitions by assignee; unassigned issues land under
// UnassignedKey, never dropped.
func (q *Query) GroupByAssignee() (map[string][]*models.Issue, error) {
	return q.GroupBy(func(i *models.Issue) string {
		if i.Assignee == "" {
			return UnassignedKey
		}
		return i.Assignee
	})
}

// GroupByStatus partitions by status value.
func (q *Query) GroupByStatus() (map[string][]*models.Issue, error) {
	return q.GroupBy(func(i *models.Issue) string { return string(i.Status) })
}

// GroupByType partitions by issue type.
func (q *Query) GroupByType() (map[string][]*models.Issue, error) {
	return q.GroupBy(func(i *models.Issue) string { return string(i.Type) })
}

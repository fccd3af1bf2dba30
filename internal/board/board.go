package board

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joescharf/sprint/internal/models"
	"github.com/joescharf/sprint/internal/nlq"
	"github.com/joescharf/sprint/internal/query"
)

// Board is the top-level container: every iteration of a project, plus an
// id-unique registry of all issues. Boards are single-writer; queries take
// read-only views and concurrent mutation during a query is the caller's
// problem.
type Board struct {
	iterations []*Iteration
	byName     map[string]*Iteration
	issues     []*models.Issue
	byID       map[string]*models.Issue
}

// New creates an empty board.
func New() *Board {
	return &Board{
		byName: make(map[string]*Iteration),
		byID:   make(map[string]*models.Issue),
	}
}

// ---------------------------------------------------------------------------
// Iteration management
// ---------------------------------------------------------------------------

// CreateIteration adds a new iteration. Names are unique per board and the
// end date must not precede the start date.
func (b *Board) CreateIteration(name string, start, end time.Time, goal string) (*Iteration, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: iteration name is required", models.ErrInvalidArgument)
	}
	if _, ok := b.byName[name]; ok {
		return nil, fmt.Errorf("%w: iteration %q already exists", models.ErrInvalidArgument, name)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: iteration %q ends before it starts", models.ErrInvalidArgument, name)
	}
	it := &Iteration{Name: name, StartDate: start, EndDate: end, Goal: goal}
	b.iterations = append(b.iterations, it)
	b.byName[name] = it
	return it, nil
}

// GetIteration finds an iteration by exact name first, then by
// case-insensitive substring match in insertion order.
func (b *Board) GetIteration(name string) (*Iteration, error) {
	if it, ok := b.byName[name]; ok {
		return it, nil
	}
	needle := strings.ToLower(name)
	for _, it := range b.iterations {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: iteration %q", models.ErrNotFound, name)
}

// DeleteIteration removes an iteration. Its issues stay on the board with a
// dangling iteration name cleared.
func (b *Board) DeleteIteration(name string) error {
	it, ok := b.byName[name]
	if !ok {
		return fmt.Errorf("%w: iteration %q", models.ErrNotFound, name)
	}
	delete(b.byName, name)
	for n, cand := range b.iterations {
		if cand == it {
			b.iterations = append(b.iterations[:n], b.iterations[n+1:]...)
			break
		}
	}
	for _, issue := range it.issues {
		issue.Iteration = ""
	}
	return nil
}

// Iterations returns all iterations in insertion order.
func (b *Board) Iterations() []*Iteration {
	out := make([]*Iteration, len(b.iterations))
	copy(out, b.iterations)
	return out
}

// ListIterations lists all iterations ordered by start date; equal starts
// keep insertion order.
func (b *Board) ListIterations() []*Iteration {
	out := b.Iterations()
	sort.SliceStable(out, func(a, c int) bool {
		return out[a].StartDate.Before(out[c].StartDate)
	})
	return out
}

// ---------------------------------------------------------------------------
// Navigation (date-based; ties broken by insertion order)
// ---------------------------------------------------------------------------

// Current returns the iteration whose [start, end] contains today.
func (b *Board) Current() (*Iteration, error) {
	now := today()
	for _, it := range b.iterations {
		if it.Contains(now) {
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: no current iteration", models.ErrNotFound)
}

// Next returns the iteration with the earliest start date after today.
func (b *Board) Next() (*Iteration, error) {
	now := today()
	var best *Iteration
	for _, it := range b.iterations {
		if !it.StartDate.After(now) {
			continue
		}
		if best == nil || it.StartDate.Before(best.StartDate) {
			best = it
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no upcoming iteration", models.ErrNotFound)
	}
	return best, nil
}

// Previous returns the iteration with the latest end date before today.
func (b *Board) Previous() (*Iteration, error) {
	now := today()
	var best *Iteration
	for _, it := range b.iterations {
		if !it.EndDate.Before(now) {
			continue
		}
		if best == nil || it.EndDate.After(best.EndDate) {
			best = it
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no completed iteration", models.ErrNotFound)
	}
	return best, nil
}

// CompletedIterations returns iterations that ended before today, ordered by
// end date, oldest first.
func (b *Board) CompletedIterations() []*Iteration {
	var out []*Iteration
	for _, it := range b.iterations {
		if it.Completed() {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(a, c int) bool {
		return out[a].EndDate.Before(out[c].EndDate)
	})
	return out
}

// ---------------------------------------------------------------------------
// Issue management
// ---------------------------------------------------------------------------

// AddIssue registers an issue on the board and attaches it to its named
// iteration when that iteration exists. Issue ids are unique board-wide.
func (b *Board) AddIssue(issue *models.Issue) error {
	if err := issue.Validate(); err != nil {
		return err
	}
	if _, ok := b.byID[issue.ID]; ok {
		return fmt.Errorf("%w: duplicate issue id %q", models.ErrInvalidArgument, issue.ID)
	}
	b.issues = append(b.issues, issue)
	b.byID[issue.ID] = issue
	if issue.Iteration != "" {
		if it, ok := b.byName[issue.Iteration]; ok {
			it.AddIssue(issue)
		}
	}
	return nil
}

// GetIssue looks up an issue by id.
func (b *Board) GetIssue(id string) (*models.Issue, error) {
	issue, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: issue %q", models.ErrNotFound, id)
	}
	return issue, nil
}

// RemoveIssue drops an issue from the board and from its iteration.
func (b *Board) RemoveIssue(id string) error {
	issue, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("%w: issue %q", models.ErrNotFound, id)
	}
	delete(b.byID, id)
	for n, cand := range b.issues {
		if cand == issue {
			b.issues = append(b.issues[:n], b.issues[n+1:]...)
			break
		}
	}
	if it, ok := b.byName[issue.Iteration]; ok {
		it.RemoveIssue(id)
	}
	return nil
}

// MoveIssue reassigns an issue to another iteration.
func (b *Board) MoveIssue(id, toIteration string) error {
	issue, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("%w: issue %q", models.ErrNotFound, id)
	}
	dest, err := b.GetIteration(toIteration)
	if err != nil {
		return err
	}
	if from, ok := b.byName[issue.Iteration]; ok {
		from.RemoveIssue(id)
	}
	dest.AddIssue(issue)
	return nil
}

// AllIssues returns every issue on the board in insertion order.
func (b *Board) AllIssues() []*models.Issue {
	out := make([]*models.Issue, len(b.issues))
	copy(out, b.issues)
	return out
}

// Query starts a fresh query over every issue on the board.
func (b *Board) Query() *query.Query {
	return query.New(b.issues)
}

// ---------------------------------------------------------------------------
// Cross-iteration queries
// ---------------------------------------------------------------------------

// ByAssignee returns issues assigned to a person across all iterations.
func (b *Board) ByAssignee(name string) []*models.Issue {
	return run(b.Query().Assignee(name))
}

// ByAuthor returns issues created by a person across all iterations.
func (b *Board) ByAuthor(name string) []*models.Issue {
	return run(b.Query().Author(name))
}

// ByLabel returns issues carrying a label across all iterations.
func (b *Board) ByLabel(label string) []*models.Issue {
	return run(b.Query().Label(label))
}

// OpenIssues returns all open issues.
func (b *Board) OpenIssues() []*models.Issue { return run(b.Query().IsOpen()) }

// BlockedIssues returns all blocked issues.
func (b *Board) BlockedIssues() []*models.Issue { return run(b.Query().IsBlocked()) }

// UnassignedIssues returns all issues without an assignee.
func (b *Board) UnassignedIssues() []*models.Issue { return run(b.Query().Unassigned()) }

// ---------------------------------------------------------------------------
// Natural language
// ---------------------------------------------------------------------------

var (
	velocityRe = regexp.MustCompile(`\bvelocity\b`)
	navRe      = regexp.MustCompile(`\b(current|next|previous|last)\s+(?:sprint|iteration)\b`)
)

// Ask answers a question at board scope. Board-level vocabulary (velocity,
// current/next/previous iteration) is checked first; everything else is
// delegated to the issue-level interpreter over all issues.
func (b *Board) Ask(question string) (nlq.Result, error) {
	q := strings.ToLower(question)

	if velocityRe.MatchString(q) {
		avg, err := b.AverageVelocity(defaultVelocityWindow)
		if err != nil {
			return nlq.Result{}, err
		}
		return nlq.Result{Kind: nlq.KindValue, Value: avg}, nil
	}

	if m := navRe.FindStringSubmatch(q); m != nil {
		var (
			it  *Iteration
			err error
		)
		switch m[1] {
		case "current":
			it, err = b.Current()
		case "next":
			it, err = b.Next()
		default: // previous, last
			it, err = b.Previous()
		}
		if err != nil {
			return nlq.Result{}, err
		}
		res, askErr := it.Ask(question)
		if errors.Is(askErr, nlq.ErrUnrecognized) {
			// "What's in the current sprint?" names no filter; the answer
			// is the iteration's full issue list.
			return nlq.Result{Kind: nlq.KindIssues, Issues: it.Issues()}, nil
		}
		return res, askErr
	}

	return nlq.Ask(question, b.issues)
}

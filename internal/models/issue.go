package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// IssueStatus represents the state of an issue.
type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "todo"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusBlocked    IssueStatus = "blocked"
	IssueStatusDone       IssueStatus = "done"
	IssueStatusClosed     IssueStatus = "closed"
)

// IssueType represents the kind of work an issue tracks.
type IssueType string

const (
	IssueTypeBug   IssueType = "bug"
	IssueTypeStory IssueType = "story"
	IssueTypeTask  IssueType = "task"
	IssueTypeSpike IssueType = "spike"
	IssueTypeEpic  IssueType = "epic"
)

// IssuePriority represents the urgency of an issue.
type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "low"
	IssuePriorityMedium   IssuePriority = "medium"
	IssuePriorityHigh     IssuePriority = "high"
	IssuePriorityCritical IssuePriority = "critical"
)

// PriorityRank orders priorities by severity, critical first (rank 0).
// Unknown priorities sort last.
func PriorityRank(p IssuePriority) int {
	switch p {
	case IssuePriorityCritical:
		return 0
	case IssuePriorityHigh:
		return 1
	case IssuePriorityMedium:
		return 2
	case IssuePriorityLow:
		return 3
	default:
		return 99
	}
}

// ParseStatus validates and normalizes a status string.
func ParseStatus(s string) (IssueStatus, error) {
	switch IssueStatus(strings.ToLower(strings.TrimSpace(s))) {
	case IssueStatusTodo:
		return IssueStatusTodo, nil
	case IssueStatusInProgress:
		return IssueStatusInProgress, nil
	case IssueStatusBlocked:
		return IssueStatusBlocked, nil
	case IssueStatusDone:
		return IssueStatusDone, nil
	case IssueStatusClosed:
		return IssueStatusClosed, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
}

// ParseType validates and normalizes an issue type string.
func ParseType(s string) (IssueType, error) {
	switch IssueType(strings.ToLower(strings.TrimSpace(s))) {
	case IssueTypeBug:
		return IssueTypeBug, nil
	case IssueTypeStory:
		return IssueTypeStory, nil
	case IssueTypeTask:
		return IssueTypeTask, nil
	case IssueTypeSpike:
		return IssueTypeSpike, nil
	case IssueTypeEpic:
		return IssueTypeEpic, nil
	}
	return "", fmt.Errorf("%w: unknown issue type %q", ErrInvalidArgument, s)
}

// ParsePriority validates and normalizes a priority string.
func ParsePriority(s string) (IssuePriority, error) {
	switch IssuePriority(strings.ToLower(strings.TrimSpace(s))) {
	case IssuePriorityLow:
		return IssuePriorityLow, nil
	case IssuePriorityMedium:
		return IssuePriorityMedium, nil
	case IssuePriorityHigh:
		return IssuePriorityHigh, nil
	case IssuePriorityCritical:
		return IssuePriorityCritical, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, s)
}

// Issue represents a tracked work item within an iteration.
// An empty Assignee or Author means unassigned/unknown. Iteration is the
// name of the owning iteration, or "" when the issue sits in the backlog.
type Issue struct {
	ID          string
	Title       string
	Description string
	Status      IssueStatus
	Type        IssueType
	Priority    IssuePriority
	Assignee    string
	Author      string
	Iteration   string
	Labels      []string
	StoryPoints int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// Validate checks enum membership and the story-point range. Called at
// construction boundaries (CLI, import, store load) so queries never see
// invalid values.
func (i *Issue) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: issue id is required", ErrInvalidArgument)
	}
	if _, err := ParseStatus(string(i.Status)); err != nil {
		return err
	}
	if _, err := ParseType(string(i.Type)); err != nil {
		return err
	}
	if _, err := ParsePriority(string(i.Priority)); err != nil {
		return err
	}
	if i.StoryPoints < 0 {
		return fmt.Errorf("%w: story points must be >= 0, got %d", ErrInvalidArgument, i.StoryPoints)
	}
	return nil
}

// IsOpen reports whether the issue is open (not done or closed).
func (i *Issue) IsOpen() bool {
	return i.Status != IssueStatusDone && i.Status != IssueStatusClosed
}

// IsClosed reports whether the issue is closed.
func (i *Issue) IsClosed() bool {
	return !i.IsOpen()
}

// IsBlocked reports whether the issue is blocked. Blocked is a status, so
// a blocked issue is always also open.
func (i *Issue) IsBlocked() bool {
	return i.Status == IssueStatusBlocked
}

// HasLabel reports whether the issue carries the label (case-insensitive).
func (i *Issue) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// NewID generates a new ULID string for issues created without an explicit id.
func NewID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

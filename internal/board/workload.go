package board

import (
	"github.com/joescharf/sprint/internal/models"
	"github.com/joescharf/sprint/internal/query"
)

// Workload is the per-person breakdown of issues and points.
type Workload struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Blocked    int `json:"blocked"`
	Done       int `json:"done"`
	Points     int `json:"points"`
}

// TeamWorkload breaks down issues by assignee, either for one iteration or
// for the whole board when iterationName is empty. Unassigned issues count
// under query.UnassignedKey.
func (b *Board) TeamWorkload(iterationName string) (map[string]*Workload, error) {
	issues := b.issues
	if iterationName != "" {
		it, err := b.GetIteration(iterationName)
		if err != nil {
			return nil, err
		}
		issues = it.issues
	}

	workload := make(map[string]*Workload)
	for _, issue := range issues {
		name := issue.Assignee
		if name == "" {
			name = query.UnassignedKey
		}
		w, ok := workload[name]
		if !ok {
			w = &Workload{}
			workload[name] = w
		}
		w.Total++
		w.Points += issue.StoryPoints
		if issue.IsOpen() {
			w.Open++
		}
		if issue.Status == models.IssueStatusInProgress {
			w.InProgress++
		}
		if issue.IsBlocked() {
			w.Blocked++
		}
		if issue.Status == models.IssueStatusDone {
			w.Done++
		}
	}
	return workload, nil
}

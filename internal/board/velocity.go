package board

import (
	"fmt"

	"github.com/joescharf/sprint/internal/models"
)

// defaultVelocityWindow is the lookback used when a caller does not pick one.
const defaultVelocityWindow = 3

// Velocity trend classifications.
const (
	TrendIncreasing   = "increasing"
	TrendDecreasing   = "decreasing"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient_data"
)

// VelocityEntry is one completed iteration's velocity.
type VelocityEntry struct {
	Iteration string `json:"iteration"`
	Points    int    `json:"points"`
}

// VelocityHistory returns the velocity of the last n completed iterations
// (end date before today), ordered by end date with the most recent last.
// Fewer than n completed iterations yields all of them, without padding.
func (b *Board) VelocityHistory(n int) ([]VelocityEntry, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: velocity window must be >= 0, got %d", models.ErrInvalidArgument, n)
	}
	completed := b.CompletedIterations()
	if len(completed) > n {
		completed = completed[len(completed)-n:]
	}
	out := make([]VelocityEntry, len(completed))
	for i, it := range completed {
		out[i] = VelocityEntry{Iteration: it.Name, Points: it.Velocity()}
	}
	return out, nil
}

// AverageVelocity is the arithmetic mean over VelocityHistory(n). An empty
// history is ErrInvalidState rather than zero, so an empty board cannot
// masquerade as a legitimate zero-velocity sprint. A zero window is
// ErrInvalidArgument instead: the mean over nothing is undefined no matter
// how many iterations have completed.
func (b *Board) AverageVelocity(n int) (float64, error) {
	if n == 0 {
		return 0, fmt.Errorf("%w: velocity window must be >= 1 for an average, got 0", models.ErrInvalidArgument)
	}
	history, err := b.VelocityHistory(n)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 {
		return 0, fmt.Errorf("%w: no completed iterations", models.ErrInvalidState)
	}
	sum := 0
	for _, h := range history {
		sum += h.Points
	}
	return float64(sum) / float64(len(history)), nil
}

// VelocityTrend compares the first and second half of the recent history
// and classifies the direction. A swing beyond 10% counts as a trend.
func (b *Board) VelocityTrend(n int) (string, error) {
	history, err := b.VelocityHistory(n)
	if err != nil {
		return "", err
	}
	if len(history) < 2 {
		return TrendInsufficient, nil
	}

	half := len(history) / 2
	firstSum, secondSum := 0, 0
	for _, h := range history[:half] {
		firstSum += h.Points
	}
	for _, h := range history[half:] {
		secondSum += h.Points
	}
	first := float64(firstSum) / float64(half)
	second := float64(secondSum) / float64(len(history)-half)

	if first <= 0 {
		if second > 0 {
			return TrendIncreasing, nil
		}
		return TrendStable, nil
	}
	diff := (second - first) / first * 100
	switch {
	case diff > 10:
		return TrendIncreasing, nil
	case diff < -10:
		return TrendDecreasing, nil
	default:
		return TrendStable, nil
	}
}

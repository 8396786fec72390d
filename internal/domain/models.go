package domain

import (
	"context"
	"time"
)

// Target represents a collection task: one keyword, one post budget
type Target struct {
	Keyword string
	Count   int
}

// Card is a point-in-time view of one post summary on the results page.
// Handles go stale after any DOM mutation, so cards are re-detected every round.
type Card struct {
	Text      string
	URL       string
	Visible   bool
	Selector  string
	Index     int
	Signature string
}

// CollectedPost is the durable output unit of a collection run
type CollectedPost struct {
	Index       int       `json:"id"`
	URL         string    `json:"url"`
	Text        string    `json:"text"`
	CollectedAt time.Time `json:"collected_at"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// RunState is the terminal state a collection run ended in
type RunState string

const (
	StateDone      RunState = "done"
	StateExhausted RunState = "exhausted"
	// StateInterrupted marks a run cut short by cancellation; Posts holds what was collected.
	StateInterrupted RunState = "interrupted"
)

// Run is the result of collecting one target
type Run struct {
	ID              string          `json:"run_id"`
	Keyword         string          `json:"keyword"`
	Target          int             `json:"target"`
	State           RunState        `json:"state"`
	Posts           []CollectedPost `json:"posts"`
	Rounds          int             `json:"rounds"`
	ScrollRounds    int             `json:"scroll_rounds"`
	ExhaustedRounds int             `json:"exhausted_rounds"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
}

// Collector defines the interface for post collection
type Collector interface {
	Collect(ctx context.Context, target Target) (*Run, error)
}

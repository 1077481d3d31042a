package milestone

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// Checkpoint carries route metadata aligned 1:1 with a milestone:
// recommended party, key items, pacing budget, and free-form notes.
type Checkpoint struct {
	MilestoneID      string        `json:"milestone_id"`
	Name             string        `json:"name"`
	Location         string        `json:"location,omitempty"` // map identifier
	Coords           *state.Coord  `json:"coords,omitempty"`   // target tile, when known
	RecommendedParty []string      `json:"recommended_party,omitempty"`
	KeyItems         []string      `json:"key_items,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	TimeBudget       time.Duration `json:"time_budget"`
}

// Pace rates elapsed time against the current checkpoint's budget.
type Pace string

const (
	PaceUnder Pace = "under" // ahead of budget
	PaceOn    Pace = "on"
	PaceOver  Pace = "over"
)

// Report is the progress view handed to external collaborators. It is
// plain data, never prose.
type Report struct {
	PercentComplete float64 `json:"percent_complete"`
	CompletedCount  int     `json:"completed_count"`
	TotalCount      int     `json:"total_count"`

	Elapsed time.Duration `json:"elapsed"`
	Budget  time.Duration `json:"budget,omitempty"`
	// BudgetRatio is budget over elapsed, clamped to [0, 10]. Above 1.0
	// means ahead of pace.
	BudgetRatio float64 `json:"budget_ratio"`
	Pace        Pace    `json:"pace"`

	CurrentMilestone string      `json:"current_milestone,omitempty"`
	Description      string      `json:"description,omitempty"`
	Checkpoint       *Checkpoint `json:"checkpoint,omitempty"`
	Done             bool        `json:"done"`
}

const budgetRatioCap = 10.0

// Router derives progress and pacing from the engine's state. It is a
// read-only view; it never mutates the engine.
type Router struct {
	engine      *Engine
	checkpoints map[string]Checkpoint
}

// NewRouter indexes checkpoints by milestone ID over the given engine.
func NewRouter(engine *Engine, checkpoints []Checkpoint) *Router {
	idx := make(map[string]Checkpoint, len(checkpoints))
	for _, cp := range checkpoints {
		idx[cp.MilestoneID] = cp
	}
	return &Router{engine: engine, checkpoints: idx}
}

// Checkpoint returns the checkpoint metadata for a milestone ID.
func (r *Router) Checkpoint(milestoneID string) (Checkpoint, bool) {
	cp, ok := r.checkpoints[milestoneID]
	return cp, ok
}

// Progress computes the current progress report.
func (r *Router) Progress() Report {
	ps := r.engine.Progress()
	total := len(r.engine.Route())

	report := Report{
		CompletedCount: len(ps.Completed),
		TotalCount:     total,
		Elapsed:        ps.Elapsed,
		Done:           r.engine.Done(),
	}
	if total > 0 {
		report.PercentComplete = float64(len(ps.Completed)) / float64(total) * 100
	}

	active, ok := r.engine.Active()
	if ok {
		report.CurrentMilestone = active.ID
		report.Description = active.Description
		if cp, found := r.checkpoints[active.ID]; found {
			report.Checkpoint = &cp
			report.Budget = cp.TimeBudget
		}
	}

	report.BudgetRatio, report.Pace = pace(report.Budget, report.Elapsed)
	return report
}

// pace clamps budget/elapsed and buckets it into under/on/over.
func pace(budget, elapsed time.Duration) (float64, Pace) {
	if budget <= 0 {
		return 0, PaceOn
	}
	if elapsed <= 0 {
		return budgetRatioCap, PaceUnder
	}
	ratio := float64(budget) / float64(elapsed)
	if ratio > budgetRatioCap {
		ratio = budgetRatioCap
	}
	switch {
	case ratio >= 1.1:
		return ratio, PaceUnder
	case ratio >= 0.75:
		return ratio, PaceOn
	default:
		return ratio, PaceOver
	}
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a map identifier like "LITTLEROOT_TOWN_PLAYERS_HOUSE_1F"
// as a readable title for reports and the console.
func DisplayName(mapID string) string {
	if mapID == "" {
		return ""
	}
	name := strings.ReplaceAll(mapID, "_", " ")
	return titleCaser.String(strings.ToLower(name))
}

package milestone

import (
	"fmt"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// Kind is the verification strategy for a milestone.
type Kind string

const (
	// KindStoryFlag is satisfied when a named game flag reads true.
	KindStoryFlag Kind = "story_flag"
	// KindLocation is satisfied when the player is on a named map.
	KindLocation Kind = "location"
	// KindPartyState is satisfied by party composition.
	KindPartyState Kind = "party_state"
	// KindCounter is satisfied when a named counter meets a threshold.
	KindCounter Kind = "counter"
)

// Milestone is a single verifiable storyline objective. Milestones form a
// total order by Position; prerequisites always precede the milestone that
// names them.
type Milestone struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Kind        Kind     `json:"kind"`
	Position    int      `json:"position"`
	Prereqs     []string `json:"prereqs,omitempty"`

	// Verification parameters; which ones apply depends on Kind.
	Flag         string `json:"flag,omitempty"`
	MapID        string `json:"map_id,omitempty"`
	MinPartySize int    `json:"min_party_size,omitempty"`
	Species      string `json:"species,omitempty"`
	Counter      string `json:"counter,omitempty"`
	Threshold    int    `json:"threshold,omitempty"`
}

// Satisfied evaluates the milestone's predicate against a snapshot. An
// error means the predicate could not be evaluated at all (required field
// absent from the snapshot); ambiguity never counts as satisfaction.
func (m Milestone) Satisfied(snap *state.Snapshot) (bool, error) {
	if snap == nil {
		return false, fmt.Errorf("milestone %s: no snapshot", m.ID)
	}
	switch m.Kind {
	case KindStoryFlag:
		v, known := snap.Flag(m.Flag)
		if !known {
			return false, fmt.Errorf("milestone %s: flag data absent", m.ID)
		}
		return v, nil
	case KindLocation:
		if snap.MapID == "" {
			return false, fmt.Errorf("milestone %s: map identifier absent", m.ID)
		}
		return snap.MapID == m.MapID, nil
	case KindPartyState:
		if snap.Party == nil {
			return false, fmt.Errorf("milestone %s: party data absent", m.ID)
		}
		if len(snap.Party) < m.MinPartySize {
			return false, nil
		}
		if m.Species == "" {
			return true, nil
		}
		for _, member := range snap.Party {
			if member.Species == m.Species {
				return true, nil
			}
		}
		return false, nil
	case KindCounter:
		v, known := snap.Counter(m.Counter)
		if !known {
			return false, fmt.Errorf("milestone %s: counter %q absent", m.ID, m.Counter)
		}
		return v >= m.Threshold, nil
	default:
		return false, fmt.Errorf("milestone %s: unknown kind %q", m.ID, m.Kind)
	}
}

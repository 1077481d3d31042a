package state

// PartyMember is a summary of one party slot.
type PartyMember struct {
	Species string `json:"species"`
	Level   int    `json:"level"`
	HP      int    `json:"hp"`
	MaxHP   int    `json:"max_hp"`
}

// Snapshot is an immutable capture of observable game state at one instant.
// The Seq number is assigned by the synchronizer when the snapshot is
// accepted into its cache; consumers only ever receive copies.
type Snapshot struct {
	MapID    string          `json:"map_id"`
	Pos      Coord           `json:"pos"`
	Facing   Direction       `json:"facing"`
	Party    []PartyMember   `json:"party,omitempty"`
	Flags    map[string]bool `json:"flags,omitempty"`
	Counters map[string]int  `json:"counters,omitempty"`
	Map      *LocalMap       `json:"map,omitempty"`
	Seq      uint64          `json:"seq"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		MapID:  s.MapID,
		Pos:    s.Pos,
		Facing: s.Facing,
		Seq:    s.Seq,
		Map:    s.Map.Clone(),
	}
	if s.Party != nil {
		out.Party = make([]PartyMember, len(s.Party))
		copy(out.Party, s.Party)
	}
	if s.Flags != nil {
		out.Flags = make(map[string]bool, len(s.Flags))
		for k, v := range s.Flags {
			out.Flags[k] = v
		}
	}
	if s.Counters != nil {
		out.Counters = make(map[string]int, len(s.Counters))
		for k, v := range s.Counters {
			out.Counters[k] = v
		}
	}
	return out
}

// Flag returns the value of a named flag. The second return is false when
// flag data is absent from the snapshot entirely, which callers must treat
// as "unknown" rather than "unset".
func (s *Snapshot) Flag(name string) (value bool, known bool) {
	if s.Flags == nil {
		return false, false
	}
	return s.Flags[name], true
}

// Counter returns the value of a named counter. The second return is false
// when counter data is absent.
func (s *Snapshot) Counter(name string) (value int, known bool) {
	if s.Counters == nil {
		return 0, false
	}
	v, ok := s.Counters[name]
	return v, ok
}

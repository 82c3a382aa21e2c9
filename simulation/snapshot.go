package simulation

import (
	"github.com/pthm-cable/ecosim/body"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Snapshot captures every registered organism in registration order.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     s.cfg.Simulation.Seed,
		Rows:     s.board.Rows,
		Cols:     s.board.Cols,
		Round:    s.round,
		Tick:     s.tick,
		Entities: make([]telemetry.EntityState, 0, s.board.Len()),
		Bookmark: bookmark,
	}
	for _, e := range s.board.Entities() {
		in, ok := s.eco.Inspect(e)
		if !ok {
			continue
		}
		var st telemetry.EntityState
		if at, ok := s.board.Coords(e); ok {
			st.Row, st.Col = at.Row, at.Col
		}
		for _, c := range in.Components {
			switch c := c.(type) {
			case components.Identity:
				st.Serial, st.Species, st.Generation = c.Serial, c.Species, c.Generation
			case components.Lifecycle:
				st.Age = c.Age
			case components.Breeding:
				st.Cooldown = c.Remaining
			case components.Sprout:
				st.Sprout = c.DaysToSprout
			case body.Animal:
				st.Mass, st.Fat, st.Muscle = c.Mass, c.FatFraction, c.MuscleFraction
			case body.Plant:
				st.Mass = c.Mass
			}
		}
		if in.Net != nil {
			st.Layers, st.Weights = in.Net.Layers(), in.Net.Flat()
		}
		snap.Entities = append(snap.Entities, st)
	}
	return snap
}

func (s *Simulation) saveSnapshot(dir string, bookmark *telemetry.Bookmark) error {
	path, err := telemetry.SaveSnapshot(s.Snapshot(bookmark), dir)
	if err != nil {
		return err
	}
	s.logger.Info("snapshot saved", "path", path, "tick", s.tick)
	return nil
}

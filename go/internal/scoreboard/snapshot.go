package scoreboard

import (
	"time"

	"github.com/ktbartholomew/karate-scoreboard/go/internal/match"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/match/keys"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/match/timer"
)

// Snapshot is the read-only view handed to presenters after every tick and command.
type Snapshot struct {
	MatchID         string            `json:"match_id"`
	Version         uint64            `json:"version"`
	FormattedTime   string            `json:"formatted_time"`
	RemainingMillis int64             `json:"remaining_ms"`
	Running         bool              `json:"running"`
	Expired         bool              `json:"expired"`
	Warning         bool              `json:"warning"`
	DurationSec     int               `json:"duration_sec"`
	Competitors     [2]CompetitorView `json:"competitors"`
	Advantage       match.Side        `json:"advantage"`
	PendingPrefix   keys.Prefix       `json:"pending_prefix,omitempty"`
	TakenAt         time.Time         `json:"taken_at"`
}

// CompetitorView is one side of the snapshot, left first.
type CompetitorView struct {
	Side match.Side `json:"side"`
	match.Competitor
	C1Pips       string `json:"c1_pips"`
	C2Pips       string `json:"c2_pips"`
	HasAdvantage bool   `json:"has_advantage"`
}

// Competitor returns the view for side.
func (s Snapshot) Competitor(side match.Side) CompetitorView {
	if side == match.SideRight {
		return s.Competitors[1]
	}
	return s.Competitors[0]
}

func buildSnapshot(e *Engine) Snapshot {
	ts := e.countdown.State()
	remaining := ts.RemainingMillis()

	snap := Snapshot{
		MatchID:         e.id.String(),
		Version:         e.version,
		FormattedTime:   timer.Format(remaining),
		RemainingMillis: remaining,
		Running:         ts.Running,
		Expired:         ts.Expired(),
		Warning:         e.cfg.WarningThreshold > 0 && ts.Remaining <= e.cfg.WarningThreshold,
		DurationSec:     int(ts.Total / time.Second),
		Advantage:       e.state.Advantage,
		PendingPrefix:   e.keys.Pending(),
		TakenAt:         e.clock.Now(),
	}
	for i, side := range []match.Side{match.SideLeft, match.SideRight} {
		c := e.state.Competitor(side)
		snap.Competitors[i] = CompetitorView{
			Side:         side,
			Competitor:   c,
			C1Pips:       c.PenaltyPips(match.C1),
			C2Pips:       c.PenaltyPips(match.C2),
			HasAdvantage: e.state.Advantage == side,
		}
	}
	return snap
}

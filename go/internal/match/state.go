package match

import "strings"

// MaxPenalties is the cap for each penalty category.
const MaxPenalties = 4

// PenaltyCategory selects one of the two penalty counters.
type PenaltyCategory int

const (
	C1 PenaltyCategory = iota + 1
	C2
)

// Competitor is the score sheet of one side.
type Competitor struct {
	Points      int `json:"points"`
	C1Penalties int `json:"c1_penalties"`
	C2Penalties int `json:"c2_penalties"`
}

// PenaltyPips renders a penalty row as filled and empty markers, e.g. "● ● ○ ○".
func (c Competitor) PenaltyPips(cat PenaltyCategory) string {
	n := c.C1Penalties
	if cat == C2 {
		n = c.C2Penalties
	}
	n = clamp(n, 0, MaxPenalties)

	pips := make([]string, 0, MaxPenalties)
	for i := 0; i < MaxPenalties; i++ {
		if i < n {
			pips = append(pips, "●")
		} else {
			pips = append(pips, "○")
		}
	}
	return strings.Join(pips, " ")
}

// State is the scoring part of a match. It is a value type; Apply returns a new State.
type State struct {
	Left      Competitor `json:"left"`
	Right     Competitor `json:"right"`
	Advantage Side       `json:"advantage"`
}

// Competitor returns the score sheet for side. Unknown sides return the zero value.
func (s State) Competitor(side Side) Competitor {
	switch side {
	case SideLeft:
		return s.Left
	case SideRight:
		return s.Right
	default:
		return Competitor{}
	}
}

// Apply reduces a command into the scoring state. Timer commands leave it unchanged except
// ResetAll, which zeroes every field; the timer side of ResetAll is the engine's job.
func (s State) Apply(cmd Command) State {
	switch cmd.Kind {
	case CmdResetAll:
		return State{}
	case CmdSetAdvantage:
		if cmd.Side == SideNone || cmd.Side.Valid() {
			s.Advantage = cmd.Side
		}
		return s
	case CmdIncrementPoint:
		return s.update(cmd.Side, func(c *Competitor) { c.Points++ })
	case CmdDecrementPoint:
		return s.update(cmd.Side, func(c *Competitor) { c.Points = max(0, c.Points-1) })
	case CmdAddC1Penalty:
		return s.update(cmd.Side, func(c *Competitor) { c.C1Penalties = min(MaxPenalties, c.C1Penalties+1) })
	case CmdAddC2Penalty:
		return s.update(cmd.Side, func(c *Competitor) { c.C2Penalties = min(MaxPenalties, c.C2Penalties+1) })
	default:
		return s
	}
}

func (s State) update(side Side, fn func(*Competitor)) State {
	switch side {
	case SideLeft:
		fn(&s.Left)
	case SideRight:
		fn(&s.Right)
	}
	return s
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyAll(s State, cmds ...Command) State {
	for _, cmd := range cmds {
		s = s.Apply(cmd)
	}
	return s
}

func TestApply_PointsClampAtZero(t *testing.T) {
	s := applyAll(State{},
		IncrementPoint(SideLeft),
		IncrementPoint(SideLeft),
		IncrementPoint(SideLeft),
		IncrementPoint(SideLeft),
		IncrementPoint(SideLeft),
	)
	require.Equal(t, 5, s.Left.Points)

	s = s.Apply(DecrementPoint(SideLeft))
	assert.Equal(t, 4, s.Left.Points)

	s = applyAll(State{}, DecrementPoint(SideRight), DecrementPoint(SideRight))
	assert.Equal(t, 0, s.Right.Points)
}

func TestApply_PenaltiesCapAtFour(t *testing.T) {
	var s State
	for i := 0; i < 10; i++ {
		s = s.Apply(AddC1Penalty(SideRight))
		s = s.Apply(AddC2Penalty(SideLeft))
		assert.LessOrEqual(t, s.Right.C1Penalties, MaxPenalties)
		assert.LessOrEqual(t, s.Left.C2Penalties, MaxPenalties)
	}

	assert.Equal(t, MaxPenalties, s.Right.C1Penalties)
	assert.Equal(t, MaxPenalties, s.Left.C2Penalties)
	assert.Zero(t, s.Left.C1Penalties)
	assert.Zero(t, s.Right.C2Penalties)
}

func TestApply_AdvantageIsShared(t *testing.T) {
	s := State{}.Apply(SetAdvantage(SideLeft))
	assert.Equal(t, SideLeft, s.Advantage)

	s = s.Apply(SetAdvantage(SideRight))
	assert.Equal(t, SideRight, s.Advantage)

	s = s.Apply(SetAdvantage(SideNone))
	assert.Equal(t, SideNone, s.Advantage)

	s = s.Apply(SetAdvantage(Side("middle")))
	assert.Equal(t, SideNone, s.Advantage, "unknown side leaves the marker alone")
}

func TestApply_ResetAll(t *testing.T) {
	s := applyAll(State{},
		IncrementPoint(SideLeft),
		IncrementPoint(SideRight),
		AddC1Penalty(SideLeft),
		AddC2Penalty(SideRight),
		SetAdvantage(SideRight),
	)
	require.NotEqual(t, State{}, s)

	assert.Equal(t, State{}, s.Apply(ResetAll()))
}

func TestApply_TimerCommandsLeaveScoresAlone(t *testing.T) {
	s := State{}.Apply(IncrementPoint(SideRight))
	assert.Equal(t, s, s.Apply(StartStopTimer()))
	assert.Equal(t, s, s.Apply(SetMatchDuration()))
}

func TestCompetitor_PenaltyPips(t *testing.T) {
	c := Competitor{C1Penalties: 2, C2Penalties: 4}
	assert.Equal(t, "● ● ○ ○", c.PenaltyPips(C1))
	assert.Equal(t, "● ● ● ●", c.PenaltyPips(C2))
	assert.Equal(t, "○ ○ ○ ○", Competitor{}.PenaltyPips(C1))
}

func TestParseDurationAnswer(t *testing.T) {
	tests := []struct {
		answer string
		want   time.Duration
		ok     bool
	}{
		{"90", 90 * time.Second, true},
		{" 120 ", 120 * time.Second, true},
		{"1", time.Second, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"90abc", 0, false},
		{"1.5", 0, false},
		{"0", 0, false},
		{"-30", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseDurationAnswer(tt.answer)
		assert.Equal(t, tt.ok, ok, "answer %q", tt.answer)
		assert.Equal(t, tt.want, got, "answer %q", tt.answer)
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "AddC1Penalty(left)", AddC1Penalty(SideLeft).String())
	assert.Equal(t, "SetAdvantage(none)", SetAdvantage(SideNone).String())
	assert.Equal(t, "ResetAll", ResetAll().String())
}

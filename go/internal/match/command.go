package match

import "fmt"

// CommandKind enumerates the resolved actions a key press can produce.
type CommandKind int

const (
	CmdStartStopTimer CommandKind = iota + 1
	CmdResetAll
	CmdSetMatchDuration
	CmdIncrementPoint
	CmdDecrementPoint
	CmdAddC1Penalty
	CmdAddC2Penalty
	CmdSetAdvantage
)

var commandNames = map[CommandKind]string{
	CmdStartStopTimer:   "StartStopTimer",
	CmdResetAll:         "ResetAll",
	CmdSetMatchDuration: "SetMatchDuration",
	CmdIncrementPoint:   "IncrementPoint",
	CmdDecrementPoint:   "DecrementPoint",
	CmdAddC1Penalty:     "AddC1Penalty",
	CmdAddC2Penalty:     "AddC2Penalty",
	CmdSetAdvantage:     "SetAdvantage",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is a resolved action. Side is set for the per-competitor kinds (SideNone on
// SetAdvantage clears the marker). Seconds carries the raw answer for SetMatchDuration
// once the prompt collaborator has replied; it is empty when the key was just pressed.
type Command struct {
	Kind    CommandKind `json:"kind"`
	Side    Side        `json:"side,omitempty"`
	Seconds string      `json:"seconds,omitempty"`
}

func StartStopTimer() Command { return Command{Kind: CmdStartStopTimer} }
func ResetAll() Command { return Command{Kind: CmdResetAll} }
func SetMatchDuration() Command { return Command{Kind: CmdSetMatchDuration} }
func IncrementPoint(s Side) Command { return Command{Kind: CmdIncrementPoint, Side: s} }
func DecrementPoint(s Side) Command { return Command{Kind: CmdDecrementPoint, Side: s} }
func AddC1Penalty(s Side) Command { return Command{Kind: CmdAddC1Penalty, Side: s} }
func AddC2Penalty(s Side) Command { return Command{Kind: CmdAddC2Penalty, Side: s} }
func SetAdvantage(s Side) Command { return Command{Kind: CmdSetAdvantage, Side: s} }

func (c Command) String() string {
	switch c.Kind {
	case CmdIncrementPoint, CmdDecrementPoint, CmdAddC1Penalty, CmdAddC2Penalty, CmdSetAdvantage:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Side)
	default:
		return c.Kind.String()
	}
}

// MarshalText encodes the kind by name.
func (k CommandKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind by name.
func (k *CommandKind) UnmarshalText(text []byte) error {
	for kind, name := range commandNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown command kind %q", text)
}

package match

import "fmt"

// Side identifies one of the two competitors. The zero value means no side.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Valid reports whether s names a competitor.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

func (s Side) String() string {
	if s == SideNone {
		return "none"
	}
	return string(s)
}

// ParseSide accepts "left", "right" and "" / "none".
func ParseSide(v string) (Side, error) {
	switch v {
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	case "", "none":
		return SideNone, nil
	default:
		return SideNone, fmt.Errorf("unknown side %q", v)
	}
}

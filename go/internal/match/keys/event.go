package keys

// Key codes follow the DOM KeyboardEvent.code values sent by the display.
const (
	CodeSpace      = "Space"
	CodeR          = "KeyR"
	CodeT          = "KeyT"
	CodeQ          = "KeyQ"
	CodeP          = "KeyP"
	CodeS          = "KeyS"
	CodeDigit1     = "Digit1"
	CodeDigit2     = "Digit2"
	CodeArrowLeft  = "ArrowLeft"
	CodeArrowRight = "ArrowRight"
)

// KeyEvent is a single key-down with its modifier flags.
type KeyEvent struct {
	Code  string `json:"code"`
	Alt   bool   `json:"alt"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
}

// Plain reports that no modifier is held.
func (e KeyEvent) Plain() bool {
	return !e.Alt && !e.Ctrl && !e.Meta && !e.Shift
}

// AltOnly reports that alt is the only modifier held.
func (e KeyEvent) AltOnly() bool {
	return e.Alt && !e.Ctrl && !e.Meta && !e.Shift
}

// Prefix is the first half of a two-key sequence.
type Prefix string

const (
	PrefixNone      Prefix = ""
	PrefixC1        Prefix = "C1"
	PrefixC2        Prefix = "C2"
	PrefixAdvantage Prefix = "Advantage"
)

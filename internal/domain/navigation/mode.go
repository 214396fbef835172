package navigation

// Mode represents the keyboard handling state of the review view.
// In navigation mode single-key shortcuts are live; in typing mode they are
// suppressed so keystrokes reach the focused field.
type Mode string

const (
	ModeNavigation Mode = "navigation"
	ModeTyping     Mode = "typing"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// Handle identifies a focusable element of the review view. Editable is an
// explicit capability flag set by the UI binding layer; the controller never
// infers editability from element attributes.
type Handle struct {
	ID       string
	Editable bool
}

package navigation

// Key is a single key event as reported by the UI binding layer.
type Key struct {
	Name  string
	Shift bool
}

// normalizedName folds shifted letters onto their lower-case shortcut, so a
// binding layer may report the same movement as either "j" or Shift+"J".
func (k Key) normalizedName() string {
	if k.Shift && len(k.Name) == 1 {
		if c := k.Name[0]; c >= 'A' && c <= 'Z' {
			return string(c + ('a' - 'A'))
		}
	}
	return k.Name
}

// Recognized key names. Anything else is ignored by the controller.
const (
	KeyNext    = "j"
	KeyPrev    = "k"
	KeySearch  = "/"
	KeySave    = "s"
	KeyDetails = "d"
	KeyTabPrev = "["
	KeyTabNext = "]"
	KeyTab     = "Tab"
	KeyEscape  = "Escape"
)

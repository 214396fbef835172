package navigation

// Tab identifies one of the fixed detail tabs of the review view.
type Tab int

const (
	TabHeader Tab = iota
	TabCoding
	TabRaw
	TabLinks
	TabActivity
)

const tabCount = 5

var tabNames = [tabCount]string{"Header", "Coding", "Raw", "Links", "Activity"}

// String returns the display name of the tab.
func (t Tab) String() string {
	if t < 0 || int(t) >= tabCount {
		return "Unknown"
	}
	return tabNames[t]
}

// IsValid returns true if the tab is one of the fixed five.
func (t Tab) IsValid() bool {
	return t >= 0 && int(t) < tabCount
}

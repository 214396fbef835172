package navigation

import (
	"sync"
	"time"
)

// defaultBlurDebounce tolerates focus hopping between sibling editable
// elements without bouncing the mode back to navigation.
const defaultBlurDebounce = 50 * time.Millisecond

// Callbacks connects the controller to the owning view. Any callback may be
// nil; the corresponding action becomes a silent no-op.
type Callbacks struct {
	// ListLen reports the length of the current filtered/sorted worklist.
	ListLen func() int
	// OnSelect is invoked with the new selection index after j/k movement.
	OnSelect func(index int)
	// OnTab is invoked when the active tab changes.
	OnTab func(tab Tab)
	// Save is the externally supplied save action for the s shortcut.
	Save func()
	// Focus asks the UI binding layer to move real focus to the handle.
	Focus func(h Handle)
	// Blur asks the UI binding layer to clear real focus (Escape).
	Blur func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithBlurDebounce overrides the focus-loss debounce interval.
func WithBlurDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// Controller owns the keyboard navigation state of one review view: the
// navigation/typing mode, the selected worklist row and the active detail
// tab. It holds no reference to real UI elements; the binding layer feeds it
// key, focus and blur events and receives movement through Callbacks.
//
// The controller must be attached before it reacts to events and detached
// when the view goes away so the pending blur timer is released.
type Controller struct {
	mu sync.Mutex

	cb       Callbacks
	debounce time.Duration

	attached bool
	mode     Mode
	selected int
	tab      Tab

	focus  *Handle
	search *Handle
	fields []Handle

	blurTimer *time.Timer
}

// NewController creates a controller in navigation mode with no selection.
func NewController(cb Callbacks, opts ...Option) *Controller {
	c := &Controller{
		cb:       cb,
		debounce: defaultBlurDebounce,
		mode:     ModeNavigation,
		selected: -1,
		tab:      TabHeader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach activates event handling. Attaching twice is a no-op.
func (c *Controller) Attach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = true
}

// Detach deactivates event handling and cancels any pending blur check.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = false
	c.stopBlurTimerLocked()
}

// RegisterSearch registers the search input handle used by the / shortcut.
func (c *Controller) RegisterSearch(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = &h
}

// RegisterFields registers the detail-container handles, in display order,
// used by the d and Tab shortcuts.
func (c *Controller) RegisterFields(hs []Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = append([]Handle(nil), hs...)
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Selected returns the current selection index, -1 when nothing is selected.
func (c *Controller) Selected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// ActiveTab returns the currently active detail tab.
func (c *Controller) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

// HandleFocus reports that an element gained focus. Editable elements switch
// the controller into typing mode and cancel any pending blur check.
func (c *Controller) HandleFocus(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attached {
		return
	}

	c.stopBlurTimerLocked()
	c.focus = &h
	if h.Editable {
		c.mode = ModeTyping
	}
}

// HandleBlur reports that the focused element lost focus. next is the
// element gaining focus, or nil when focus left the view. When the next
// target is not editable the switch back to navigation mode happens after a
// short debounce, so focus moving between sibling editable elements (blur
// then immediate focus) does not flap the mode.
func (c *Controller) HandleBlur(next *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attached {
		return
	}

	c.stopBlurTimerLocked()

	if next != nil && next.Editable {
		c.focus = next
		c.mode = ModeTyping
		return
	}

	c.focus = next
	c.blurTimer = time.AfterFunc(c.debounce, c.commitBlur)
}

// commitBlur finalizes a debounced focus loss.
func (c *Controller) commitBlur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attached {
		return
	}
	if c.focus == nil || !c.focus.Editable {
		c.mode = ModeNavigation
	}
}

// HandleKey dispatches a single key event. Escape always fires; every other
// shortcut requires navigation mode and a non-editable focus target. The
// focus check backs up the mode flag because mode updates can lag real focus
// state during the blur debounce.
func (c *Controller) HandleKey(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.attached {
		return
	}

	name := k.normalizedName()

	if name == KeyEscape {
		c.stopBlurTimerLocked()
		c.mode = ModeNavigation
		c.focus = nil
		if c.cb.Blur != nil {
			c.cb.Blur()
		}
		return
	}

	if c.mode != ModeNavigation {
		return
	}
	if c.focus != nil && c.focus.Editable {
		return
	}

	switch name {
	case KeyNext:
		c.moveSelectionLocked(1)
	case KeyPrev:
		c.moveSelectionLocked(-1)
	case "1", "2", "3", "4", "5":
		c.setTabLocked(Tab(name[0] - '1'))
	case KeyTabPrev:
		c.stepTabLocked(-1)
	case KeyTabNext:
		c.stepTabLocked(1)
	case KeySearch:
		c.focusHandleLocked(c.search)
	case KeySave:
		if c.cb.Save != nil {
			c.cb.Save()
		}
	case KeyDetails, KeyTab:
		c.focusFirstFieldLocked()
	}
}

// moveSelectionLocked moves the selection by delta with wraparound at both
// ends. With no current selection, moving forward selects the first row and
// moving backward selects the last.
func (c *Controller) moveSelectionLocked(delta int) {
	if c.cb.ListLen == nil {
		return
	}
	n := c.cb.ListLen()
	if n <= 0 {
		return
	}

	var idx int
	switch {
	case c.selected < 0 && delta > 0:
		idx = 0
	case c.selected < 0:
		idx = n - 1
	default:
		idx = ((c.selected+delta)%n + n) % n
	}

	c.selected = idx
	if c.cb.OnSelect != nil {
		c.cb.OnSelect(idx)
	}
}

// setTabLocked activates a tab by absolute position; out-of-range values
// are ignored.
func (c *Controller) setTabLocked(t Tab) {
	if !t.IsValid() {
		return
	}
	c.tab = t
	if c.cb.OnTab != nil {
		c.cb.OnTab(t)
	}
}

func (c *Controller) stepTabLocked(delta int) {
	next := Tab(((int(c.tab)+delta)%tabCount + tabCount) % tabCount)
	c.setTabLocked(next)
}

// focusHandleLocked moves focus to the handle and enters typing mode.
func (c *Controller) focusHandleLocked(h *Handle) {
	if h == nil {
		return
	}
	c.stopBlurTimerLocked()
	c.focus = h
	c.mode = ModeTyping
	if c.cb.Focus != nil {
		c.cb.Focus(*h)
	}
}

// focusFirstFieldLocked focuses the first editable handle of the registered
// detail container.
func (c *Controller) focusFirstFieldLocked() {
	for i := range c.fields {
		if c.fields[i].Editable {
			c.focusHandleLocked(&c.fields[i])
			return
		}
	}
}

func (c *Controller) stopBlurTimerLocked() {
	if c.blurTimer != nil {
		c.blurTimer.Stop()
		c.blurTimer = nil
	}
}

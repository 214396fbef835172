package navigation

import (
	"testing"
	"time"
)

// testView records callback invocations for assertions.
type testView struct {
	listLen  int
	selected []int
	tabs     []Tab
	saves    int
	focused  []Handle
	blurs    int
}

func (v *testView) callbacks() Callbacks {
	return Callbacks{
		ListLen:  func() int { return v.listLen },
		OnSelect: func(i int) { v.selected = append(v.selected, i) },
		OnTab:    func(t Tab) { v.tabs = append(v.tabs, t) },
		Save:     func() { v.saves++ },
		Focus:    func(h Handle) { v.focused = append(v.focused, h) },
		Blur:     func() { v.blurs++ },
	}
}

func newAttached(v *testView, opts ...Option) *Controller {
	c := NewController(v.callbacks(), opts...)
	c.Attach()
	return c
}

func TestController_InitialState(t *testing.T) {
	c := NewController(Callbacks{})

	if c.Mode() != ModeNavigation {
		t.Errorf("Mode() = %v, want %v", c.Mode(), ModeNavigation)
	}
	if c.Selected() != -1 {
		t.Errorf("Selected() = %d, want -1", c.Selected())
	}
	if c.ActiveTab() != TabHeader {
		t.Errorf("ActiveTab() = %v, want %v", c.ActiveTab(), TabHeader)
	}
}

func TestController_NextSelectionWraps(t *testing.T) {
	v := &testView{listLen: 3}
	c := newAttached(v)

	// No selection: j picks the first row.
	c.HandleKey(Key{Name: KeyNext})
	if c.Selected() != 0 {
		t.Fatalf("Selected() = %d, want 0", c.Selected())
	}

	c.HandleKey(Key{Name: KeyNext})
	if c.Selected() != 1 {
		t.Fatalf("Selected() = %d, want 1", c.Selected())
	}

	// At the last row, j wraps to the first.
	c.HandleKey(Key{Name: KeyNext})
	c.HandleKey(Key{Name: KeyNext})
	if c.Selected() != 0 {
		t.Fatalf("Selected() = %d, want 0 after wraparound", c.Selected())
	}

	want := []int{0, 1, 2, 0}
	if len(v.selected) != len(want) {
		t.Fatalf("OnSelect calls = %v, want %v", v.selected, want)
	}
	for i := range want {
		if v.selected[i] != want[i] {
			t.Errorf("OnSelect[%d] = %d, want %d", i, v.selected[i], want[i])
		}
	}
}

func TestController_PrevSelectionWraps(t *testing.T) {
	v := &testView{listLen: 3}
	c := newAttached(v)

	// No selection: k picks the last row.
	c.HandleKey(Key{Name: KeyPrev})
	if c.Selected() != 2 {
		t.Fatalf("Selected() = %d, want 2", c.Selected())
	}

	c.HandleKey(Key{Name: KeyPrev})
	c.HandleKey(Key{Name: KeyPrev})
	// At the first row, k wraps to the last.
	c.HandleKey(Key{Name: KeyPrev})
	if c.Selected() != 2 {
		t.Fatalf("Selected() = %d, want 2 after wraparound", c.Selected())
	}
}

func TestController_ShiftMovementIdentical(t *testing.T) {
	v := &testView{listLen: 3}
	c := newAttached(v)

	// The binding layer reports shifted letters upper-case; the controller
	// folds them onto the plain shortcut.
	c.HandleKey(Key{Name: "J", Shift: true})
	if c.Selected() != 0 {
		t.Errorf("Selected() = %d, want 0", c.Selected())
	}
	c.HandleKey(Key{Name: "K", Shift: true})
	if c.Selected() != 2 {
		t.Errorf("Selected() = %d, want 2", c.Selected())
	}
	// An upper-case name without Shift is not a recognized shortcut.
	c.HandleKey(Key{Name: "J"})
	if c.Selected() != 2 {
		t.Errorf("Selected() = %d, want 2 after ignored key", c.Selected())
	}
}

func TestController_EmptyListMovementIsNoop(t *testing.T) {
	v := &testView{listLen: 0}
	c := newAttached(v)

	c.HandleKey(Key{Name: KeyNext})
	c.HandleKey(Key{Name: KeyPrev})

	if c.Selected() != -1 {
		t.Errorf("Selected() = %d, want -1", c.Selected())
	}
	if len(v.selected) != 0 {
		t.Errorf("OnSelect calls = %v, want none", v.selected)
	}
}

func TestController_TypingModeSuppressesShortcuts(t *testing.T) {
	v := &testView{listLen: 3}
	c := newAttached(v)

	c.HandleFocus(Handle{ID: "vendor-input", Editable: true})
	if c.Mode() != ModeTyping {
		t.Fatalf("Mode() = %v, want %v", c.Mode(), ModeTyping)
	}

	c.HandleKey(Key{Name: KeyNext})
	c.HandleKey(Key{Name: KeySave})
	c.HandleKey(Key{Name: "2"})

	if c.Selected() != -1 {
		t.Errorf("Selected() = %d, want -1 while typing", c.Selected())
	}
	if v.saves != 0 {
		t.Errorf("Save calls = %d, want 0 while typing", v.saves)
	}
	if c.ActiveTab() != TabHeader {
		t.Errorf("ActiveTab() = %v, want %v while typing", c.ActiveTab(), TabHeader)
	}
}

func TestController_EditableFocusGatesEvenInNavigationMode(t *testing.T) {
	// Mode updates can lag real focus; the focus check is the backstop.
	v := &testView{listLen: 3}
	c := newAttached(v)

	c.HandleFocus(Handle{ID: "note", Editable: true})
	c.mu.Lock()
	c.mode = ModeNavigation // simulate a lagging mode flag
	c.mu.Unlock()

	c.HandleKey(Key{Name: KeyNext})
	if len(v.selected) != 0 {
		t.Errorf("OnSelect calls = %v, want none with editable focus", v.selected)
	}
}

func TestController_EscapeAlwaysReturnsToNavigation(t *testing.T) {
	v := &testView{listLen: 3}
	c := newAttached(v)

	c.HandleFocus(Handle{ID: "vendor-input", Editable: true})
	c.HandleKey(Key{Name: KeyEscape})

	if c.Mode() != ModeNavigation {
		t.Errorf("Mode() = %v, want %v after Escape", c.Mode(), ModeNavigation)
	}
	if v.blurs != 1 {
		t.Errorf("Blur calls = %d, want 1", v.blurs)
	}

	// Shortcuts are live again.
	c.HandleKey(Key{Name: KeyNext})
	if c.Selected() != 0 {
		t.Errorf("Selected() = %d, want 0 after Escape", c.Selected())
	}
}

func TestController_TabByNumber(t *testing.T) {
	tests := []struct {
		key      string
		expected Tab
	}{
		{"1", TabHeader},
		{"2", TabCoding},
		{"3", TabRaw},
		{"4", TabLinks},
		{"5", TabActivity},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := &testView{}
			c := newAttached(v)
			c.HandleKey(Key{Name: tt.key})
			if c.ActiveTab() != tt.expected {
				t.Errorf("ActiveTab() = %v, want %v", c.ActiveTab(), tt.expected)
			}
		})
	}
}

func TestController_TabStepWraps(t *testing.T) {
	v := &testView{}
	c := newAttached(v)

	// [ from the first tab wraps to the last.
	c.HandleKey(Key{Name: KeyTabPrev})
	if c.ActiveTab() != TabActivity {
		t.Fatalf("ActiveTab() = %v, want %v", c.ActiveTab(), TabActivity)
	}

	// ] from the last tab wraps to the first.
	c.HandleKey(Key{Name: KeyTabNext})
	if c.ActiveTab() != TabHeader {
		t.Fatalf("ActiveTab() = %v, want %v", c.ActiveTab(), TabHeader)
	}
}

func TestController_SearchFocusEntersTyping(t *testing.T) {
	v := &testView{}
	c := newAttached(v)
	c.RegisterSearch(Handle{ID: "search", Editable: true})

	c.HandleKey(Key{Name: KeySearch})

	if c.Mode() != ModeTyping {
		t.Errorf("Mode() = %v, want %v", c.Mode(), ModeTyping)
	}
	if len(v.focused) != 1 || v.focused[0].ID != "search" {
		t.Errorf("Focus calls = %v, want search handle", v.focused)
	}
}

func TestController_SearchWithoutRegistrationIsNoop(t *testing.T) {
	v := &testView{}
	c := newAttached(v)

	c.HandleKey(Key{Name: KeySearch})

	if c.Mode() != ModeNavigation {
		t.Errorf("Mode() = %v, want %v", c.Mode(), ModeNavigation)
	}
	if len(v.focused) != 0 {
		t.Errorf("Focus calls = %v, want none", v.focused)
	}
}

func TestController_FocusFirstField(t *testing.T) {
	for _, key := range []string{KeyDetails, KeyTab} {
		t.Run(key, func(t *testing.T) {
			v := &testView{}
			c := newAttached(v)
			c.RegisterFields([]Handle{
				{ID: "label", Editable: false},
				{ID: "vendor-input", Editable: true},
				{ID: "amount-input", Editable: true},
			})

			c.HandleKey(Key{Name: key})

			if c.Mode() != ModeTyping {
				t.Errorf("Mode() = %v, want %v", c.Mode(), ModeTyping)
			}
			if len(v.focused) != 1 || v.focused[0].ID != "vendor-input" {
				t.Errorf("Focus calls = %v, want first editable field", v.focused)
			}
		})
	}
}

func TestController_SaveCallback(t *testing.T) {
	v := &testView{}
	c := newAttached(v)

	c.HandleKey(Key{Name: KeySave})

	if v.saves != 1 {
		t.Errorf("Save calls = %d, want 1", v.saves)
	}
}

func TestController_BlurToNonEditableReturnsToNavigation(t *testing.T) {
	v := &testView{}
	c := newAttached(v, WithBlurDebounce(time.Millisecond))

	c.HandleFocus(Handle{ID: "vendor-input", Editable: true})
	c.HandleBlur(&Handle{ID: "toolbar", Editable: false})

	// The switch is debounced, not immediate.
	if c.Mode() != ModeTyping {
		t.Fatalf("Mode() = %v, want %v before debounce", c.Mode(), ModeTyping)
	}

	time.Sleep(20 * time.Millisecond)
	if c.Mode() != ModeNavigation {
		t.Errorf("Mode() = %v, want %v after debounce", c.Mode(), ModeNavigation)
	}
}

func TestController_BlurBetweenSiblingFieldsKeepsTyping(t *testing.T) {
	v := &testView{}
	c := newAttached(v, WithBlurDebounce(time.Millisecond))

	c.HandleFocus(Handle{ID: "vendor-input", Editable: true})
	c.HandleBlur(&Handle{ID: "amount-input", Editable: true})

	time.Sleep(20 * time.Millisecond)
	if c.Mode() != ModeTyping {
		t.Errorf("Mode() = %v, want %v when focus moved to a sibling field", c.Mode(), ModeTyping)
	}
}

func TestController_FocusDuringDebounceCancelsBlur(t *testing.T) {
	v := &testView{}
	c := newAttached(v, WithBlurDebounce(5*time.Millisecond))

	c.HandleFocus(Handle{ID: "vendor-input", Editable: true})
	c.HandleBlur(nil)
	// Focus arrives again before the debounce fires.
	c.HandleFocus(Handle{ID: "amount-input", Editable: true})

	time.Sleep(20 * time.Millisecond)
	if c.Mode() != ModeTyping {
		t.Errorf("Mode() = %v, want %v after refocus", c.Mode(), ModeTyping)
	}
}

func TestController_DetachedIgnoresEvents(t *testing.T) {
	v := &testView{listLen: 3}
	c := NewController(v.callbacks())

	c.HandleKey(Key{Name: KeyNext})
	if c.Selected() != -1 {
		t.Errorf("Selected() = %d, want -1 before Attach", c.Selected())
	}

	c.Attach()
	c.HandleKey(Key{Name: KeyNext})
	c.Detach()
	c.HandleKey(Key{Name: KeyNext})

	if c.Selected() != 0 {
		t.Errorf("Selected() = %d, want 0 after Detach", c.Selected())
	}
}

func TestController_OutOfRangeDigitIgnored(t *testing.T) {
	v := &testView{}
	c := newAttached(v)

	c.HandleKey(Key{Name: "6"})
	c.HandleKey(Key{Name: "0"})

	if c.ActiveTab() != TabHeader {
		t.Errorf("ActiveTab() = %v, want %v", c.ActiveTab(), TabHeader)
	}
	if len(v.tabs) != 0 {
		t.Errorf("OnTab calls = %v, want none", v.tabs)
	}
}

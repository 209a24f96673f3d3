package gpio

// FakeSwitch is a scripted float switch for tests. Each call to Full
// consumes the next level from Levels; once exhausted, the final level
// repeats, so a "tank stays full" scenario only needs one entry.
type FakeSwitch struct {
	Levels    []bool
	ReadError error
	Closed    bool

	index int
}

func (f *FakeSwitch) Full() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Levels) == 0 {
		return false, nil
	}
	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return level, nil
}

func (f *FakeSwitch) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script so the fake can be reused across subtests.
func (f *FakeSwitch) Reset() {
	f.index = 0
	f.ReadError = nil
	f.Closed = false
}

// Bridge operation names recorded by FakeBridge.
const (
	OpSelectOpen   = "select_open"
	OpSelectClose  = "select_close"
	OpClearSelects = "clear_selects"
	OpEnable       = "enable"
	OpDisable      = "disable"
)

// FakeBridge records bridge operations in order and tracks the level of
// each output, so tests can assert both the pulse sequence and the final
// pin state.
type FakeBridge struct {
	Ops []string

	OpenSelect  bool
	CloseSelect bool
	Enabled     bool
	Indicator   bool
	Closed      bool

	SelectOpenError   error
	SelectCloseError  error
	ClearSelectsError error
	EnableError       error
	DisableError      error
}

func (f *FakeBridge) SelectOpen() error {
	f.Ops = append(f.Ops, OpSelectOpen)
	if f.SelectOpenError != nil {
		return f.SelectOpenError
	}
	f.OpenSelect = true
	return nil
}

func (f *FakeBridge) SelectClose() error {
	f.Ops = append(f.Ops, OpSelectClose)
	if f.SelectCloseError != nil {
		return f.SelectCloseError
	}
	f.CloseSelect = true
	return nil
}

func (f *FakeBridge) ClearSelects() error {
	f.Ops = append(f.Ops, OpClearSelects)
	if f.ClearSelectsError != nil {
		return f.ClearSelectsError
	}
	f.OpenSelect = false
	f.CloseSelect = false
	return nil
}

func (f *FakeBridge) Enable() error {
	f.Ops = append(f.Ops, OpEnable)
	if f.EnableError != nil {
		return f.EnableError
	}
	f.Enabled = true
	f.Indicator = true
	return nil
}

func (f *FakeBridge) Disable() error {
	f.Ops = append(f.Ops, OpDisable)
	if f.DisableError != nil {
		return f.DisableError
	}
	f.Enabled = false
	f.Indicator = false
	return nil
}

func (f *FakeBridge) Close() error {
	f.Closed = true
	return nil
}

// Reset clears the recorded operations and returns every output to low.
func (f *FakeBridge) Reset() {
	f.Ops = nil
	f.OpenSelect = false
	f.CloseSelect = false
	f.Enabled = false
	f.Indicator = false
	f.Closed = false
}

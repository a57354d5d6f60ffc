package action

// Input is the keyboard state for one tick. A key counts as just pressed only on the tick
// it goes down; holding it does not repeat.
type Input struct {
	held    map[Key]bool
	pressed map[Key]bool
	mods    Modifier
}

func NewInput() *Input {
	return &Input{held: map[Key]bool{}, pressed: map[Key]bool{}}
}

func (in *Input) Press(k Key) {
	if in.held[k] {
		return
	}
	in.held[k] = true
	in.pressed[k] = true
}

func (in *Input) Release(k Key) { delete(in.held, k) }

// Tap presses and releases k within the tick, the way terminals report keys.
func (in *Input) Tap(k Key, mods Modifier) {
	in.mods = mods
	in.Press(k)
	in.Release(k)
}

func (in *Input) SetModifiers(m Modifier) { in.mods = m }

func (in *Input) Modifiers() Modifier { return in.mods }

func (in *Input) JustPressed(k Key) bool { return in.pressed[k] }

func (in *Input) Held(k Key) bool { return in.held[k] }

// EndTick forgets this tick's presses.
func (in *Input) EndTick() {
	clear(in.pressed)
}

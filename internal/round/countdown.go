package round

import (
	"strconv"
	"strings"
)

// Seconds is the length of every round.
const Seconds = 30

// DangerThreshold is the remaining time at which the timer turns red.
const DangerThreshold = 5

// State is the lifecycle phase of a round.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

const (
	hintIdle    = "Press Start Game to begin the 30-second round."
	hintRunning = "You have 30 seconds to write and send."
	hintExpired = "Time’s up! Start again to write another message."
)

// Countdown is the pure round state machine. It has no clock of its own;
// Timer feeds it ticks.
type Countdown struct {
	state       State
	secondsLeft int
}

// NewCountdown returns an idle countdown showing the full round length.
func NewCountdown() Countdown {
	return Countdown{state: StateIdle, secondsLeft: Seconds}
}

// Start enters Running with a full round. Starting a running or expired
// countdown begins a fresh round.
func (c *Countdown) Start() {
	c.state = StateRunning
	c.secondsLeft = Seconds
}

// Tick advances one second. It reports whether this tick expired the round.
func (c *Countdown) Tick() bool {
	if c.state != StateRunning {
		return false
	}
	if c.secondsLeft <= 1 {
		c.secondsLeft = 0
		c.state = StateExpired
		return true
	}
	c.secondsLeft--
	return false
}

// State is the current lifecycle phase.
func (c Countdown) State() State {
	return c.state
}

// SecondsLeft is the whole seconds remaining in the round.
func (c Countdown) SecondsLeft() int {
	return c.secondsLeft
}

// Open reports whether input is currently permitted.
func (c Countdown) Open() bool {
	return c.state == StateRunning && c.secondsLeft > 0
}

// Accepts reports whether text may be submitted right now.
func (c Countdown) Accepts(text string) bool {
	return c.Open() && strings.TrimSpace(text) != ""
}

// Display is what the round view renders for the countdown.
type Display struct {
	State        State
	SecondsLeft  int
	Label        string
	Danger       bool
	InputEnabled bool
	Hint         string
}

// Display derives the render state from the countdown.
func (c Countdown) Display() Display {
	hint := hintIdle
	switch {
	case c.state != StateIdle && c.secondsLeft > 0:
		hint = hintRunning
	case c.state != StateIdle:
		hint = hintExpired
	}
	return Display{
		State:        c.state,
		SecondsLeft:  c.secondsLeft,
		Label:        strconv.Itoa(c.secondsLeft) + "s",
		Danger:       c.secondsLeft <= DangerThreshold,
		InputEnabled: c.Open(),
		Hint:         hint,
	}
}

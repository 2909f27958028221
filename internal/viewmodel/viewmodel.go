package viewmodel

// ModeOption is a round kind offered on the home page.
type ModeOption struct {
	Value string
	Label string
}

// HomePage holds data for the landing page.
type HomePage struct {
	Title      string
	Modes      []ModeOption
	DefaultDPR float64
}

// RoundPage holds data for the round page template.
type RoundPage struct {
	Title    string
	ViewID   string
	Mode     string
	Task     string
	RoundURL string
	Timer    Timer
	Draft    string
	CanSend  bool
	Sent     int
	Board    *Board
}

// Timer holds data for the countdown fragment. It is re-rendered on every
// tick and pushed over the stream.
type Timer struct {
	ViewID       string
	State        string
	SecondsLeft  int
	Label        string
	Danger       bool
	InputEnabled bool
	Hint         string
}

// Board holds data for the drawing board and its controls.
type Board struct {
	ViewID     string
	CSSWidth   int
	CSSHeight  int
	PixWidth   int
	PixHeight  int
	DPR        float64
	Color      string
	Width      int
	MinWidth   int
	MaxWidth   int
	Eraser     bool
	Enabled    bool
	SocketPath string
	ExportPath string
	ExportName string
}

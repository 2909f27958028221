package canvas

// Point is a position in canvas-local CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the canvas bounding box in viewport coordinates, as reported by
// the browser at the time of the event.
type Rect struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// TouchPoint is one contact of a touch event.
type TouchPoint struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// PointerType names the gesture phase of a pointer event.
type PointerType string

const (
	PointerDown   PointerType = "down"
	PointerMove   PointerType = "move"
	PointerUp     PointerType = "up"
	PointerLeave  PointerType = "leave"
	PointerCancel PointerType = "cancel"
)

// PointerEvent is a mouse or touch event forwarded from the view. Touch
// events carry Touches; mouse events carry ClientX/ClientY.
type PointerEvent struct {
	Type    PointerType  `json:"type"`
	ClientX float64      `json:"clientX"`
	ClientY float64      `json:"clientY"`
	Touches []TouchPoint `json:"touches,omitempty"`
	Touch   bool         `json:"touch,omitempty"`
	Rect    Rect         `json:"rect"`
}

// Locate maps the event into canvas-local CSS pixels using the bounding box
// carried by this event. A touch event without contacts has no position.
func Locate(ev PointerEvent) (Point, bool) {
	x, y := ev.ClientX, ev.ClientY
	if ev.Touch || len(ev.Touches) > 0 {
		if len(ev.Touches) == 0 {
			return Point{}, false
		}
		x, y = ev.Touches[0].ClientX, ev.Touches[0].ClientY
	}
	return Point{X: x - ev.Rect.Left, Y: y - ev.Rect.Top}, true
}

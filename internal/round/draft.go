package round

import "strings"

// Gate decides whether a message may be submitted.
type Gate interface {
	Submit(text string) bool
}

// Draft is the unsent chat text of a round view. It is not safe for
// concurrent use; the owning view serializes access.
type Draft struct {
	text string
}

func (d *Draft) Set(text string) {
	d.text = text
}

func (d *Draft) Text() string {
	return d.text
}

// Ready reports whether the draft has something worth sending.
func (d *Draft) Ready() bool {
	return strings.TrimSpace(d.text) != ""
}

// Send submits the trimmed draft through the gate. On acceptance the draft
// is cleared and the sent text returned; otherwise the draft is kept.
func (d *Draft) Send(gate Gate) (string, bool) {
	if !gate.Submit(d.text) {
		return "", false
	}
	sent := strings.TrimSpace(d.text)
	d.text = ""
	return sent, true
}

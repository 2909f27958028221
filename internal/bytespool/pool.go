package bytespool

import (
	"bytes"
	"sync"
)

// Put drops buffers that grew beyond maxKeep.
const maxKeep = 4 << 20

var pool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Get returns an empty buffer.
func Get() *bytes.Buffer {
	b := pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

func Put(b *bytes.Buffer) {
	if b == nil || b.Cap() > maxKeep {
		return
	}
	pool.Put(b)
}

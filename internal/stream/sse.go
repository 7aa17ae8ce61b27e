package stream

import (
	"io"

	sse "github.com/tmaxmax/go-sse"
)

// maxFrameSize bounds a single event on the wire.
const maxFrameSize = 64 << 10

// messages yields the data of every default-typed event read from r. Named
// events and events without data are skipped. The sequence ends with a nil
// error when r reaches EOF.
func messages(r io.Reader) func(yield func(string, error) bool) {
	return func(yield func(string, error) bool) {
		for ev, err := range sse.Read(r, &sse.ReadConfig{MaxEventSize: maxFrameSize}) {
			if err != nil {
				yield("", err)
				return
			}
			if ev.Type != "" && ev.Type != "message" {
				continue
			}
			if ev.Data == "" {
				continue
			}
			if !yield(ev.Data, nil) {
				return
			}
		}
	}
}

package view

import (
	"io"
	"sync"
)

// WriterTarget writes the HTML of every frame to an io.Writer, one
// snapshot per line.
type WriterTarget struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterTarget creates a WriterTarget.
func NewWriterTarget(w io.Writer) *WriterTarget {
	return &WriterTarget{w: w}
}

func (t *WriterTarget) write(f Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, f.HTML+"\n")
	return err
}

// Mount implements Target.
func (t *WriterTarget) Mount(f Frame) error { return t.write(f) }

// Update implements Target.
func (t *WriterTarget) Update(f Frame) error { return t.write(f) }

// Unmount implements Target.
func (t *WriterTarget) Unmount() error { return nil }

// Recorder is a Target that keeps every frame in memory.
type Recorder struct {
	mu        sync.Mutex
	frames    []Frame
	unmounted bool
}

// Mount implements Target.
func (r *Recorder) Mount(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	r.unmounted = false
	return nil
}

// Update implements Target.
func (r *Recorder) Update(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

// Unmount implements Target.
func (r *Recorder) Unmount() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmounted = true
	return nil
}

// Frames returns a copy of the recorded frames.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Last returns the most recent frame.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Unmounted reports whether Unmount was called after the last Mount.
func (r *Recorder) Unmounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unmounted
}

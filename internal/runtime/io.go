// internal/runtime/io.go
package runtime

import (
	"bufio"
	"os"
	"sync"
)

// IO is the interpreter's input/output boundary.
//
// Read returns the next input token and true, or "" and false when no input
// is available. What "no input" means depends on the backend: a blocking
// backend only fails at end of stream (a fatal condition for citeste), a
// buffered backend fails whenever its queue is drained (the suspension
// signal).
type IO interface {
	Write(text string)
	Read() (string, bool)
	Blocking() bool
	Destroy()
}

// StdIO is the terminal backend: writes go to stdout and flush, reads block
// for one line on stdin.
type StdIO struct {
	out *bufio.Writer
	in  *bufio.Scanner
}

func NewStdIO() *StdIO {
	return &StdIO{
		out: bufio.NewWriter(os.Stdout),
		in:  bufio.NewScanner(os.Stdin),
	}
}

func (s *StdIO) Write(text string) {
	s.out.WriteString(text)
	s.out.Flush()
}

// Read blocks until a full line arrives and strips the trailing newline.
// End of stream reports no input.
func (s *StdIO) Read() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *StdIO) Blocking() bool {
	return true
}

func (s *StdIO) Destroy() {
	s.out.Flush()
}

// Buffered is the host-embedding backend: two FIFO queues and a
// waiting-for-input flag, nothing ever blocks. The host pushes input and
// drains output around Step calls; a mutex keeps the queues safe for hosts
// that poll from another goroutine.
type Buffered struct {
	mu           sync.Mutex
	output       []string
	input        []string
	waitingInput bool
}

func NewBuffered() *Buffered {
	return &Buffered{}
}

func (b *Buffered) Write(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.output = append(b.output, text)
}

// Read dequeues one input chunk; with the queue empty it raises the
// waiting-for-input flag and reports no input.
func (b *Buffered) Read() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.input) == 0 {
		b.waitingInput = true
		return "", false
	}
	text := b.input[0]
	b.input = b.input[1:]
	b.waitingInput = false
	return text, true
}

func (b *Buffered) Blocking() bool {
	return false
}

func (b *Buffered) Destroy() {
	b.Clear()
}

// PushInput enqueues one input chunk.
func (b *Buffered) PushInput(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input = append(b.input, text)
}

// PopOutput dequeues one output chunk.
func (b *Buffered) PopOutput() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.output) == 0 {
		return "", false
	}
	text := b.output[0]
	b.output = b.output[1:]
	return text, true
}

func (b *Buffered) HasOutput() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.output) > 0
}

func (b *Buffered) NeedsInput() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waitingInput
}

// Clear drops both queues and the waiting flag.
func (b *Buffered) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.output = nil
	b.input = nil
	b.waitingInput = false
}

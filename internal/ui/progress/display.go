// Package progress shows the progress of batch operations on the terminal:
// a bar fed by batch events, a spinner for calls of unknown length, and a
// plain line writer for output that is not a terminal.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// stopTimeout bounds how long Stop waits for the program to exit.
const stopTimeout = 500 * time.Millisecond

// display runs a bubbletea program on out and feeds it messages through a
// buffered channel. Messages sent while the buffer is full are dropped.
type display struct {
	out     io.Writer
	updates chan tea.Msg
	done    chan struct{}

	mu      sync.Mutex
	program *tea.Program
	running bool
	stopped bool
}

func newDisplay(out io.Writer) *display {
	return &display{
		out:     out,
		updates: make(chan tea.Msg, 16),
		done:    make(chan struct{}),
	}
}

// next waits for the next message. A closed channel quits the program.
func (d *display) next() tea.Cmd {
	updates := d.updates
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return msg
	}
}

func (d *display) start(model tea.Model) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running || d.stopped {
		return
	}

	d.program = tea.NewProgram(model, tea.WithoutSignalHandler(), tea.WithOutput(d.out))
	d.running = true
	go func() {
		_, _ = d.program.Run()
		close(d.done)
	}()
}

// send reports whether msg was handed to a running program.
func (d *display) send(msg tea.Msg) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return false
	}
	select {
	case d.updates <- msg:
	default:
	}
	return true
}

func (d *display) stop() {
	d.mu.Lock()
	if !d.running {
		d.stopped = true
		d.mu.Unlock()
		return
	}
	d.running = false
	d.stopped = true
	close(d.updates)
	d.mu.Unlock()

	d.program.Quit()
	select {
	case <-d.done:
	case <-time.After(stopTimeout):
	}
	fmt.Fprint(d.out, "\r"+ansi.EraseLineRight)
}

// Package control implements the named-pipe transport between the manager
// and the console. Commands are written one per line to the input pipe, and
// the manager answers each with a framed response on the output pipe.
package control

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/sidkik/fss/pkg/errors"
)

// mkfifo is mocked in unit tests.
var mkfifo = unix.Mkfifo

// Channel is the manager's end of the control pipes.
type Channel struct {
	in, out *os.File
	paths   []string
}

// Listen creates the pipes, replacing any left over from a previous run, and
// opens them for the manager. Both are opened read-write so that opening
// doesn't block until a console connects, and so that the input pipe never
// reports EOF when a console disconnects.
func Listen(pipeIn, pipeOut string) (*Channel, error) {
	for _, path := range []string{pipeIn, pipeOut} {
		if err := create(path); err != nil {
			return nil, errors.WithContext(err, path)
		}
	}

	in, err := os.OpenFile(pipeIn, os.O_RDWR, 0)
	if err != nil {
		Remove(pipeIn, pipeOut)
		return nil, errors.WithContext(err, "open input pipe")
	}

	out, err := os.OpenFile(pipeOut, os.O_RDWR, 0)
	if err != nil {
		in.Close()
		Remove(pipeIn, pipeOut)
		return nil, errors.WithContext(err, "open output pipe")
	}

	return &Channel{in: in, out: out, paths: []string{pipeIn, pipeOut}}, nil
}

func create(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WithContext(err, "remove stale pipe")
	}
	if err := mkfifo(path, 0666); err != nil && err != unix.EEXIST {
		return errors.WithContext(err, "mkfifo")
	}
	return nil
}

// Commands returns the manager's input pipe.
func (c *Channel) Commands() io.Reader {
	return c.in
}

// Responses returns the manager's output pipe.
func (c *Channel) Responses() io.Writer {
	return c.out
}

// Close closes and removes the pipes.
func (c *Channel) Close() error {
	inErr := c.in.Close()
	outErr := c.out.Close()
	Remove(c.paths...)

	if inErr != nil {
		return inErr
	}
	return outErr
}

// Remove deletes the given pipes. Missing pipes are ignored.
func Remove(paths ...string) {
	for _, path := range paths {
		os.Remove(path)
	}
}

// ReadLines sends each line read from r to the returned channel until r
// returns an error or ctx is cancelled. The channel is closed when reading
// stops.
func ReadLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

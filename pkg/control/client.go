package control

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sidkik/fss/pkg/errors"
	"github.com/sidkik/fss/pkg/protocol"
)

// drainTimeout is how long Dial waits for leftover responses before the pipe
// is considered empty.
var drainTimeout = 50 * time.Millisecond

// Client sends commands to a running manager.
type Client struct {
	commands  io.Writer
	responses *bufio.Reader
	closers   []io.Closer
}

// Dial opens the manager's pipes. It blocks until the manager has the pipes
// open.
func Dial(pipeIn, pipeOut string) (*Client, error) {
	for _, path := range []string{pipeIn, pipeOut} {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewFriendlyError("The control pipe %q doesn't "+
					"exist. Make sure that `fss manager` is running in this "+
					"directory.", path)
			}
			return nil, errors.WithContext(err, "stat")
		}
	}

	in, err := os.OpenFile(pipeIn, os.O_WRONLY, 0)
	if err != nil {
		return nil, errors.WithContext(err, "open input pipe")
	}

	out, err := os.OpenFile(pipeOut, os.O_RDONLY, 0)
	if err != nil {
		in.Close()
		return nil, errors.WithContext(err, "open output pipe")
	}

	if err := drain(out); err != nil {
		in.Close()
		out.Close()
		return nil, errors.WithContext(err, "drain output pipe")
	}

	client := NewClient(in, out)
	client.closers = []io.Closer{in, out}
	return client, nil
}

// drain discards responses that a previous client left unread, so that they
// aren't mistaken for replies to this client's commands.
func drain(out *os.File) error {
	buf := make([]byte, 4096)
	for {
		if err := out.SetReadDeadline(time.Now().Add(drainTimeout)); err != nil {
			// The file doesn't support deadlines, so it can't be drained
			// without blocking.
			return nil
		}

		if _, err := out.Read(buf); err != nil {
			if os.IsTimeout(err) {
				break
			}
			return err
		}
	}
	return out.SetReadDeadline(time.Time{})
}

// NewClient returns a client that writes commands to commands and reads
// responses from responses.
func NewClient(commands io.Writer, responses io.Reader) *Client {
	return &Client{commands: commands, responses: bufio.NewReader(responses)}
}

// Send writes the command and returns the lines of the manager's response.
func (c *Client) Send(command string) ([]string, error) {
	if _, err := fmt.Fprintf(c.commands, "%s\n", command); err != nil {
		return nil, errors.WithContext(err, "write command")
	}

	lines, err := protocol.ReadResponse(c.responses)
	if err != nil {
		return lines, errors.WithContext(err, "read response")
	}
	return lines, nil
}

// Close closes the pipes opened by Dial.
func (c *Client) Close() error {
	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/sKV/rpc/common"
)

// Command is one request sent through a Pipeline and the future of its response.
// The result is written exactly once by the reactor goroutine and can be read by any
// number of goroutines.
type Command struct {
	request string
	payload []byte

	done  chan struct{}
	value string
	ok    bool
	err   error
}

func newCommand(request string) *Command {
	return &Command{
		request: request,
		payload: []byte(request),
		done:    make(chan struct{}),
	}
}

// failedCommand returns a command that is already resolved with err
func failedCommand(request string, err error) *Command {
	c := newCommand(request)
	c.resolve("", false, err)
	return c
}

func (c *Command) resolve(value string, ok bool, err error) {
	c.value, c.ok, c.err = value, ok, err
	close(c.done)
}

// Request returns the request text
func (c *Command) Request() string {
	return c.request
}

// Done returns a channel that is closed once the response arrived
func (c *Command) Done() <-chan struct{} {
	return c.done
}

// Get waits at most timeout for the response. ok is false if the server answered with
// null. A protocol violation reported by the server is returned as *common.ProtocolError,
// an elapsed timeout as common.ErrTimeout. A timed out command can still be awaited again.
func (c *Command) Get(timeout time.Duration) (value string, ok bool, err error) {
	select {
	case <-c.done:
		return c.value, c.ok, c.err
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.done:
		return c.value, c.ok, c.err
	case <-timer.C:
		return "", false, fmt.Errorf("%w: no response to %q after %s", common.ErrTimeout, c.request, timeout)
	}
}

// Wait is like Get but bounded by ctx. An exceeded deadline is reported as common.ErrTimeout.
func (c *Command) Wait(ctx context.Context) (value string, ok bool, err error) {
	select {
	case <-c.done:
		return c.value, c.ok, c.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", false, fmt.Errorf("%w: no response to %q", common.ErrTimeout, c.request)
		}
		return "", false, ctx.Err()
	}
}

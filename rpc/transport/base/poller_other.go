//go:build !linux

package base

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

var errUnsupported = errors.New("transport: unsupported platform, the reactor requires linux")

type poller struct{}

func newPoller() (*poller, error) { return nil, errUnsupported }

func (p *poller) add(int, uint32) error    { return errUnsupported }
func (p *poller) modify(int, uint32) error { return errUnsupported }
func (p *poller) remove(int) error         { return errUnsupported }
func (p *poller) wake() error              { return errUnsupported }
func (p *poller) close() error             { return nil }

func (p *poller) wait(time.Duration, func(int, uint32)) (bool, error) {
	return false, errUnsupported
}

func listenSocket(int, unix.Sockaddr) (int, error)     { return -1, errUnsupported }
func dialSocket(int, unix.Sockaddr) (int, bool, error) { return -1, false, errUnsupported }
func acceptSocket(int) (int, string, error)            { return -1, "", errUnsupported }
func socketError(int) error                            { return errUnsupported }
func readSocket(int, []byte) (int, error)              { return 0, errUnsupported }
func writeSocket(int, []byte) (int, error)             { return 0, errUnsupported }
func closeSocket(int) error                            { return nil }
func localAddr(int) string                             { return "" }
func peerAddr(int) string                              { return "" }

//go:build linux

package base

import (
	"encoding/binary"
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

const maxEvents = 128

// poller wraps an epoll instance and an eventfd used to interrupt a blocking wait
type poller struct {
	epfd   int
	wakefd int
	events []unix.EpollEvent
}

func newPoller() (*poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	p := &poller{epfd: epfd, wakefd: wakefd, events: make([]unix.EpollEvent, maxEvents)}
	if err := p.add(wakefd, evRead); err != nil {
		_ = p.close()
		return nil, err
	}
	return p, nil
}

func toEpoll(ev uint32) uint32 {
	var e uint32
	if ev&evRead != 0 {
		e |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if ev&evWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func fromEpoll(e uint32) uint32 {
	var ev uint32
	if e&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
		ev |= evRead
	}
	if e&unix.EPOLLOUT != 0 {
		ev |= evWrite
	}
	if e&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		ev |= evError
	}
	return ev
}

func (p *poller) add(fd int, ev uint32) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: toEpoll(ev), Fd: int32(fd)})
}

func (p *poller) modify(fd int, ev uint32) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Events: toEpoll(ev), Fd: int32(fd)})
}

func (p *poller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait blocks for at most timeout and calls fn for every ready descriptor.
// It reports whether the poller was woken by wake.
func (p *poller) wait(timeout time.Duration, fn func(fd int, ev uint32)) (bool, error) {
	n, err := unix.EpollWait(p.epfd, p.events, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, err
	}

	woken := false
	for i := 0; i < n; i++ {
		fd := int(p.events[i].Fd)
		if fd == p.wakefd {
			var buf [8]byte
			_, _ = unix.Read(p.wakefd, buf[:])
			woken = true
			continue
		}
		fn(fd, fromEpoll(p.events[i].Events))
	}
	return woken, nil
}

func (p *poller) wake() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(p.wakefd, buf[:])
	if errors.Is(err, unix.EAGAIN) {
		// counter saturated, a wakeup is pending anyway
		return nil
	}
	return err
}

func (p *poller) close() error {
	err1 := unix.Close(p.wakefd)
	err2 := unix.Close(p.epfd)
	return errors.Join(err1, err2)
}

package transport

import (
	"os"

	"github.com/ValentinKolb/sKV/rpc/common"
	"golang.org/x/sys/unix"
)

// ApplySocketConf sets the kernel buffer sizes configured in conf (0 keeps the os default)
func ApplySocketConf(fd int, conf common.SocketConf) error {
	if conf.WriteBufferSize > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, conf.WriteBufferSize); err != nil {
			return os.NewSyscallError("setsockopt SO_SNDBUF", err)
		}
	}
	if conf.ReadBufferSize > 0 {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, conf.ReadBufferSize); err != nil {
			return os.NewSyscallError("setsockopt SO_RCVBUF", err)
		}
	}
	return nil
}

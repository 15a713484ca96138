package ioutil

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/golang/glog"
)

// LogError logs read/write errors at a severity matching how routine they
// are: timeouts warn, peer resets and closes are verbose only.
func LogError(err error) {
	if err == nil {
		return
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		glog.WarningDepth(1, err)
		return
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if sErr, ok := opErr.Err.(*os.SyscallError); ok {
			if sErr.Err == syscall.ECONNRESET {
				if glog.V(1) {
					glog.InfoDepth(1, err)
				}
				return
			}
		}
		if opErr.Err.Error() == "use of closed network connection" {
			if glog.V(1) {
				glog.InfoDepth(1, err)
			}
			return
		}
	}

	if errors.Is(err, io.EOF) {
		if glog.V(1) {
			glog.InfoDepth(1, err)
		}
	} else {
		glog.WarningDepth(1, err)
	}
}

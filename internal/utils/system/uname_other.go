//go:build !linux && !darwin && !freebsd

package system

import (
	"fmt"
	"runtime"
)

func hostUname() (unameInfo, error) {
	return unameInfo{}, fmt.Errorf("uname is not available on %s", runtime.GOOS)
}

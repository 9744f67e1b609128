//go:build linux || darwin || freebsd

package system

import "golang.org/x/sys/unix"

func hostUname() (unameInfo, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return unameInfo{}, err
	}
	return unameInfo{
		Sysname: unix.ByteSliceToString(u.Sysname[:]),
		Machine: unix.ByteSliceToString(u.Machine[:]),
		Release: unix.ByteSliceToString(u.Release[:]),
	}, nil
}

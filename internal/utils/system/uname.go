package system

// unameInfo holds the uname fields the probes use.
type unameInfo struct {
	Sysname string
	Machine string
	Release string
}

// uname is replaced in tests.
var uname = hostUname

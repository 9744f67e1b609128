package system

import "testing"

var (
	SuseServicePack    = suseServicePack
	ParseKernelVersion = parseKernelVersion
)

func StubCoreCounters(t *testing.T, logical func() (int, error), num func() int) {
	t.Helper()
	origLogical, origNum := logicalCPUCount, numCPU
	t.Cleanup(func() { logicalCPUCount, numCPU = origLogical, origNum })
	logicalCPUCount, numCPU = logical, num
}

func StubUname(t *testing.T, sysname, machine, release string, err error) {
	t.Helper()
	orig := uname
	t.Cleanup(func() { uname = orig })
	uname = func() (unameInfo, error) {
		return unameInfo{Sysname: sysname, Machine: machine, Release: release}, err
	}
}

func StubPlatformInformation(t *testing.T, platform, version string, err error) {
	t.Helper()
	orig := platformInformation
	t.Cleanup(func() { platformInformation = orig })
	platformInformation = func() (string, string, string, error) {
		return platform, "", version, err
	}
}

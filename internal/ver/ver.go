package ver

import (
	"fmt"
	"runtime"
)

var (
	// NAME .
	NAME = "labflow"
	// VERSION .
	VERSION = "unknown"
	// REVISION .
	REVISION = "HEAD"
	// BUILTAT .
	BUILTAT = "now"
)

// Version is the multi line build description printed by the version command.
func Version() string {
	version := ""
	version += fmt.Sprintf("Version:        %s\n", VERSION)
	version += fmt.Sprintf("Git hash:       %s\n", REVISION)
	version += fmt.Sprintf("Built:          %s\n", BUILTAT)
	version += fmt.Sprintf("Golang version: %s\n", runtime.Version())
	version += fmt.Sprintf("OS/Arch:        %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return version
}

// Short .
func Short() string {
	return fmt.Sprintf("%s %s (%s)", NAME, VERSION, REVISION)
}

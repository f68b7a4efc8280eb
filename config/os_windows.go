//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
	"golang.org/x/term"
)

const enableVirtualTerminalProcessing uint32 = 0x4

// EnableColorOutput checks if colorized output is possible and not disabled
// with NO_COLOR environment variable. On success console is switched to VT100
// sequence processing.
func EnableColorOutput(stream *os.File) bool {
	if noColor() || !term.IsTerminal(int(stream.Fd())) || !supportsVT() {
		return false
	}
	return enableVT(windows.Handle(stream.Fd())) == nil
}

// supportsVT reports Windows 10 or later.
func supportsVT() bool {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	major, _, err := k.GetIntegerValue("CurrentMajorVersionNumber")
	return err == nil && major >= 10
}

func enableVT(h windows.Handle) error {
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return err
	}
	if mode&enableVirtualTerminalProcessing != 0 {
		return nil
	}
	return windows.SetConsoleMode(h, mode|enableVirtualTerminalProcessing)
}

package snapshot

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// CaptureRunning reports whether the external capture process appears to be
// running. Used for status reporting only; the reader degrades gracefully
// regardless.
func CaptureRunning(name string) bool {
	if name == "" {
		return false
	}
	name = strings.ToLower(name)

	procs, err := process.Processes()
	if err != nil {
		return false
	}

	for _, proc := range procs {
		pname, err := proc.Name()
		if err == nil && strings.Contains(strings.ToLower(pname), name) {
			return true
		}
		cmdline, err := proc.Cmdline()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(cmdline), name) {
			return true
		}
	}
	return false
}

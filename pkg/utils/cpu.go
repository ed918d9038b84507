package utils

import "github.com/shirou/gopsutil/cpu"

// CheckCPUUsage samples total CPU usage and reports whether it is at or under maxCPUUsage.
// A failed sample admits the caller.
func CheckCPUUsage(maxCPUUsage float64) (bool, float64) {
	usage, err := cpu.Percent(0, false)
	if err != nil || len(usage) == 0 {
		return true, 0
	}
	return usage[0] <= maxCPUUsage, usage[0]
}

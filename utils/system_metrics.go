package utils

import (
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// GetCPUUsage returns the current CPU usage as a percentage
func GetCPUUsage(sample time.Duration) float64 {
	percentage, err := cpu.Percent(sample, false)
	if err != nil || len(percentage) == 0 {
		return 0
	}
	return percentage[0]
}

// GetMemoryUsage returns used memory as a percentage of total
func GetMemoryUsage() float64 {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return v.UsedPercent
}

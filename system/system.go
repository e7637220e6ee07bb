package system

import (
	"path/filepath"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

type Information struct {
	Version string `json:"version"`
	System  System `json:"system"`
}

type System struct {
	Architecture  string `json:"architecture"`
	CPUThreads    int    `json:"cpu_threads"`
	MemoryBytes   int64  `json:"memory_bytes"`
	KernelVersion string `json:"kernel_version"`
	OS            string `json:"os"`
	OSType        string `json:"os_type"`
}

type Utilization struct {
	MemoryTotal uint64  `json:"memory_total"`
	MemoryUsed  uint64  `json:"memory_used"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
	LoadAvg1    float64 `json:"load_average1"`
	LoadAvg5    float64 `json:"load_average5"`
	LoadAvg15   float64 `json:"load_average15"`
	CpuPercent  float64 `json:"cpu_percent"`
	DiskTotal   uint64  `json:"disk_total"`
	DiskUsed    uint64  `json:"disk_used"`
}

func GetSystemInformation() (*Information, error) {
	kernelVersion, err := getKernelVersion()
	if err != nil {
		return nil, err
	}

	osName, err := getOperatingSystemName()
	if err != nil {
		return nil, err
	}

	m, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}

	return &Information{
		Version: Version,
		System: System{
			Architecture:  runtime.GOARCH,
			CPUThreads:    runtime.NumCPU(),
			MemoryBytes:   int64(m.Total),
			KernelVersion: kernelVersion,
			OS:            osName,
			OSType:        runtime.GOOS,
		},
	}, nil
}

// GetSystemUtilization returns the current resource usage of the host. Disk
// usage is reported for the filesystem holding dataPath, which is where the
// sqlite database lives. An empty dataPath skips the disk figures.
func GetSystemUtilization(dataPath string) (*Utilization, error) {
	c, err := cpu.Percent(0, false)
	if err != nil {
		return nil, err
	}
	m, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}
	s, err := mem.SwapMemory()
	if err != nil {
		return nil, err
	}
	l, err := load.Avg()
	if err != nil {
		return nil, err
	}

	u := &Utilization{
		MemoryTotal: m.Total,
		MemoryUsed:  m.Used,
		SwapTotal:   s.Total,
		SwapUsed:    s.Used,
		LoadAvg1:    l.Load1,
		LoadAvg5:    l.Load5,
		LoadAvg15:   l.Load15,
	}
	if len(c) > 0 {
		u.CpuPercent = c[0]
	}

	if dataPath != "" {
		// The database file itself may not exist yet, its directory will.
		if usage, err := disk.Usage(filepath.Dir(dataPath)); err == nil {
			u.DiskTotal = usage.Total
			u.DiskUsed = usage.Used
		}
	}
	return u, nil
}

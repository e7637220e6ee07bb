package system

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestGetSystemInformation(t *testing.T) {
	i, err := GetSystemInformation()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if i.Version != Version {
		t.Fatalf("expected version %q, got %q", Version, i.Version)
	}
	if i.System.OSType != runtime.GOOS {
		t.Fatalf("expected os type %q, got %q", runtime.GOOS, i.System.OSType)
	}
	if i.System.CPUThreads < 1 {
		t.Fatalf("expected at least one cpu thread, got %d", i.System.CPUThreads)
	}
}

func TestGetSystemUtilizationReportsDisk(t *testing.T) {
	u, err := GetSystemUtilization(filepath.Join(t.TempDir(), "pathway.db"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if u.MemoryTotal == 0 {
		t.Fatalf("expected total memory to be reported")
	}
	if u.DiskTotal == 0 {
		t.Fatalf("expected disk usage for the data directory")
	}
}

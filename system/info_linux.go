//go:build linux

package system

import (
	"github.com/acobaugh/osrelease"
	"github.com/shirou/gopsutil/v3/host"
)

func getKernelVersion() (string, error) {
	return host.KernelVersion()
}

func getOperatingSystemName() (string, error) {
	release, err := osrelease.Read()
	if err != nil {
		return "Linux", nil
	}

	if release["PRETTY_NAME"] != "" {
		return release["PRETTY_NAME"], nil
	} else if release["NAME"] != "" {
		return release["NAME"], nil
	}
	return "Linux", nil
}

//go:build linux

package worker

import (
	"fmt"

	"github.com/containerd/cgroups"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

const defaultCPUShares = 1024

// NewCgroupHook creates a v1 cgroup at path with the given CPU shares and returns a
// hook that moves a process into it, plus a cleanup that deletes the cgroup.
func NewCgroupHook(path string, shares uint64) (func(pid int) error, func() error, error) {
	if shares == 0 {
		shares = defaultCPUShares
	}
	control, err := cgroups.New(
		cgroups.V1,
		cgroups.StaticPath(path),
		&specs.LinuxResources{
			CPU: &specs.LinuxCPU{
				Shares: &shares,
			},
		},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cgroup %s: %w", path, err)
	}

	hook := func(pid int) error {
		if err := control.Add(cgroups.Process{Pid: pid}); err != nil {
			return fmt.Errorf("failed to add pid %d to cgroup: %w", pid, err)
		}
		return nil
	}
	return hook, control.Delete, nil
}

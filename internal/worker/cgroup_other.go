//go:build !linux

package worker

import "errors"

func NewCgroupHook(path string, shares uint64) (func(pid int) error, func() error, error) {
	return nil, nil, errors.New("cgroups are only supported on linux")
}

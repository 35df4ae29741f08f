package osutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/pbnjay/memory"
)

const (
	// Default cgroup v1 limit_in_bytes, which indicates memory isn't
	// restricted
	unrestrictedCgroupV1Limit = 9223372036854771712

	cgroupV1MemoryLimitLocation = "/sys/fs/cgroup/memory/memory.limit_in_bytes"
	cgroupV2MemoryLimitLocation = "/sys/fs/cgroup/memory.max"
)

// GetTotalMemory returns the total available memory size, taking container
// cgroup limits into account.
func GetTotalMemory() uint64 {
	totalMemory := memory.TotalMemory()

	if limit, ok := readCgroupLimit(cgroupV2MemoryLimitLocation); ok && limit < totalMemory {
		return limit
	}
	if limit, ok := readCgroupLimit(cgroupV1MemoryLimitLocation); ok && limit != unrestrictedCgroupV1Limit {
		return limit
	}
	return totalMemory
}

func readCgroupLimit(path string) (uint64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return parseCgroupLimit(string(raw))
}

// parseCgroupLimit parses a cgroup memory limit file, where "max" means
// unrestricted
func parseCgroupLimit(raw string) (uint64, bool) {
	value := strings.TrimSpace(raw)
	if value == "max" {
		return 0, false
	}

	limit, err := strconv.ParseUint(value, 10, 64)
	if err != nil || limit == 0 {
		return 0, false
	}
	return limit, true
}

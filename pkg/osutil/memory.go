package osutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/pbnjay/memory"
)

const (
	// Default cgroup v1 limit_in_bytes, meaning memory is not restricted.
	// See https://unix.stackexchange.com/questions/420906/what-is-the-value-for-the-cgroups-limit-in-bytes-if-the-memory-is-not-restricte
	unrestrictedMemoryLimit = 9223372036854771712

	cgroupV1MemoryLimitLocation = "/sys/fs/cgroup/memory/memory.limit_in_bytes"
	cgroupV2MemoryLimitLocation = "/sys/fs/cgroup/memory.max"
)

// GetTotalMemory returns the total available memory size. The call is
// container-aware.
func GetTotalMemory() uint64 {
	return getTotalMemory(memory.TotalMemory(), cgroupV2MemoryLimitLocation, cgroupV1MemoryLimitLocation)
}

func getTotalMemory(hostMemory uint64, limitLocations ...string) uint64 {
	for _, location := range limitLocations {
		raw, err := os.ReadFile(location)
		if err != nil {
			continue
		}

		limit, ok := parseMemoryLimit(string(raw))
		if ok && limit < hostMemory {
			return limit
		}
	}
	return hostMemory
}

func parseMemoryLimit(raw string) (uint64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "max" {
		return 0, false
	}

	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || limit == 0 || limit == unrestrictedMemoryLimit {
		return 0, false
	}
	return limit, true
}

//go:build linux

package helpers

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// TotalSystemMemoryMB reads MemTotal from /proc/meminfo, 0 if unavailable.
func TotalSystemMemoryMB() int {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer file.Close()
	return parseMemTotalMB(file)
}

func parseMemTotalMB(r io.Reader) int {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

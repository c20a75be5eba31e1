//go:build !linux

package helpers

// TotalSystemMemoryMB is only implemented on linux.
func TotalSystemMemoryMB() int {
	return 0
}

package helpers

const (
	memoryLimitShare = 0.75
	memoryLimitFloor = 512
)

// RecommendedMemoryLimitMB is the soft memory limit for the process: 75% of
// physical memory, at least 512 MB unless the machine has less than that.
// ok is false when physical memory could not be determined.
func RecommendedMemoryLimitMB() (limitMB int, ok bool) {
	return recommendedLimit(TotalSystemMemoryMB())
}

func recommendedLimit(totalMB int) (int, bool) {
	if totalMB <= 0 {
		return memoryLimitFloor, false
	}

	limit := int(float64(totalMB) * memoryLimitShare)
	if limit >= memoryLimitFloor {
		return limit, true
	}
	if totalMB < memoryLimitFloor {
		return totalMB, true
	}
	return memoryLimitFloor, true
}

package providers

import "time"

func averageLatency(current time.Duration, latest time.Duration, count int64) time.Duration {
	if count <= 1 {
		return latest
	}
	return time.Duration(((current * time.Duration(count-1)) + latest) / time.Duration(count))
}

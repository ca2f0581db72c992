// Package mono provides a monotonic nanosecond clock. The core engine
// never needs wall-clock time for ordering or TTL math -- only elapsed
// duration -- so everything that measures "how long since" goes through
// here instead of time.Now().
package mono

import "time"

var start = time.Now()

// NanoTime returns nanoseconds elapsed since process start. Two calls'
// difference is a safe duration even across NTP/wall-clock adjustments.
func NanoTime() int64 {
	return time.Since(start).Nanoseconds()
}

// Since returns the duration elapsed since a NanoTime() reading.
func Since(t int64) time.Duration {
	return time.Duration(NanoTime() - t)
}

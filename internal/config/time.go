package config

import "time"

// CalculateBetweenTime converts a Timer into a duration. A zero timer yields
// zero, which callers treat as "disabled".
func CalculateBetweenTime(timer Timer) time.Duration {
	return time.Duration(CalculateMilliseconds(timer)) * time.Millisecond
}

func CalculateMilliseconds(timer Timer) uint64 {
	// Calculate total duration in milliseconds
	return uint64(timer.Days)*24*60*60*1000 +
		uint64(timer.Hours)*60*60*1000 +
		uint64(timer.Minutes)*60*1000 +
		uint64(timer.Seconds)*1000
}

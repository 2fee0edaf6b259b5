package application

import "time"

// SystemClock reads the wall clock. Times before the epoch read as 0.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	s := time.Now().Unix()
	if s < 0 {
		return 0
	}
	return uint64(s)
}

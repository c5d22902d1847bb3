package util

import "time"

func TimeOperationMicroseconds(op func()) int64 {
	start := time.Now()
	op()
	return time.Since(start).Microseconds()
}

// TimeWorkMicroseconds times a Work-style call, returning its bit count
// and error along with the duration.
func TimeWorkMicroseconds(work func() (int, error)) (int, int64, error) {
	var (
		n   int
		err error
	)
	us := TimeOperationMicroseconds(func() {
		n, err = work()
	})
	return n, us, err
}

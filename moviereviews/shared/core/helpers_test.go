package core_test

import "time"

func fixedTime() time.Time {
	return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
}

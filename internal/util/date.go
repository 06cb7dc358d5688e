package util

import "time"

var kst = time.FixedZone("KST", 9*60*60)

// ToKSTString renders a timestamp as "YYYY-MM-DD HH:mm:ss" in Korean
// standard time, the format list endpoints expose.
func ToKSTString(t time.Time) string {
	return t.In(kst).Format("2006-01-02 15:04:05")
}

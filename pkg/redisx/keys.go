package redisx

import "fmt"

const ns = "cinema:v1"

func KeyShowtime(showtimeID int64) string {
	return fmt.Sprintf("%s:showtime:%d", ns, showtimeID)
}

func KeyHallLayout(hall string) string {
	return fmt.Sprintf("%s:hall:%s:layout", ns, hall)
}

func KeyIdempotency(scope, key string) string {
	return fmt.Sprintf("%s:idem:%s:%s", ns, scope, key)
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelSeatsChanged() string {
	return ns + ":seats:changed"
}

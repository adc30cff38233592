package ports

import "time"

// Clock supplies the current time so expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

package visits

import (
	"fmt"
	"math/rand/v2"
)

const (
	guestCodeMin        = 100000
	guestCodeSpan       = 900000
	defaultCodeAttempts = 10
)

// CodeGenerator returns a candidate guest code.
type CodeGenerator func() string

// GenerateGuestCode returns a random six digit code in [100000, 999999].
func GenerateGuestCode() string {
	return fmt.Sprintf("%d", guestCodeMin+rand.IntN(guestCodeSpan))
}

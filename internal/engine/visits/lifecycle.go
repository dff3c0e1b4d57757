package visits

import (
	"fmt"
	"math"
	"time"

	"visitr/internal/platform/models"
)

// ExpectedEnd is the moment a visit is due to finish.
func ExpectedEnd(g *models.Guest) time.Time {
	return g.SignInTime.Add(time.Duration(g.ExpectedDuration) * time.Minute)
}

// IsExpired reports whether a signed-in guest has outstayed the expected
// duration. Guests in any other state are never expired.
func IsExpired(g *models.Guest, now time.Time) bool {
	if g.Status != models.StatusSignedIn {
		return false
	}
	return now.After(ExpectedEnd(g))
}

// DisplayStatus returns the status shown to operators, which is "expired"
// for overdue signed-in guests.
func DisplayStatus(g *models.Guest, now time.Time) string {
	if IsExpired(g, now) {
		return models.StatusExpired
	}
	return g.Status
}

func HasMinimumVisitTimePassed(signInTime time.Time, minVisitMinutes int, now time.Time) bool {
	elapsed := now.Sub(signInTime).Minutes()
	return elapsed >= float64(minVisitMinutes)
}

// VisitDuration returns the visit length in whole minutes, rounded to the
// nearest minute. A nil signOut measures up to now.
func VisitDuration(signIn time.Time, signOut *time.Time, now time.Time) int {
	end := now
	if signOut != nil {
		end = *signOut
	}
	return int(math.Round(end.Sub(signIn).Minutes()))
}

// RemainingMinutes floors the minutes left until the expected end. The
// result is negative once the guest is overdue.
func RemainingMinutes(g *models.Guest, now time.Time) int {
	ms := ExpectedEnd(g).Sub(now).Milliseconds()
	return int(math.Floor(float64(ms) / 60000))
}

func FormatRemaining(minutes int) string {
	if minutes < 0 {
		return fmt.Sprintf("Overdue by %d min", -minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatDuration renders minutes as "1 hour 5 minutes" style text.
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return plural(minutes, "minute")
	}

	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return plural(hours, "hour")
	}
	return plural(hours, "hour") + " " + plural(rest, "minute")
}

package dashboard

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"visitr/internal/engine/visits"
	"visitr/internal/platform/models"
)

const timeLayout = "15:04"

func statusBadge(g *models.Guest, now time.Time) string {
	switch visits.DisplayStatus(g, now) {
	case models.StatusExpired:
		return "EXPIRED"
	case models.StatusSignedIn:
		return "signed in"
	default:
		return "signed out"
	}
}

func remaining(g *models.Guest, now time.Time) string {
	if g.Status != models.StatusSignedIn {
		return "-"
	}
	return visits.FormatRemaining(visits.RemainingMinutes(g, now))
}

func idCard(g *models.Guest) string {
	if !g.IDCardAssigned {
		return "pending"
	}
	return models.StringValue(g.IDCardNumber)
}

// Render writes the stats line and guest table for one snapshot.
func Render(w io.Writer, org *models.Organization, snap Snapshot, now time.Time) error {
	if org != nil {
		fmt.Fprintf(w, "%s\n", org.Name)
	}
	if s := snap.Stats; s != nil {
		fmt.Fprintf(w, "Total: %d  Active: %d  Today: %d  Pending IDs: %d\n",
			s.TotalGuests, s.ActiveGuests, s.TodayGuests, s.PendingIDAssignments)
	}
	if !snap.RefreshedAt.IsZero() {
		fmt.Fprintf(w, "Updated %s\n", snap.RefreshedAt.Local().Format("15:04:05"))
	}
	if snap.Err != nil {
		fmt.Fprintf(w, "Last refresh failed: %v\n", snap.Err)
	}
	fmt.Fprintln(w)

	if len(snap.Guests) == 0 {
		_, err := fmt.Fprintln(w, "No guests found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tGUEST\tLOCATION\tVISITING\tSIGNED IN\tSTATUS\tREMAINING\tID CARD")
	for _, g := range snap.Guests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			g.GuestCode,
			g.GuestName,
			g.Location,
			g.PersonToSee,
			g.SignInTime.Local().Format(timeLayout),
			statusBadge(g, now),
			remaining(g, now),
			idCard(g),
		)
	}
	return tw.Flush()
}

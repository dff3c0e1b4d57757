package visits

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "visitr/internal/pkg/errors"
	"visitr/internal/platform/models"
)

const exportDateLayout = "2006-01-02"

// CSVHeader lists the export columns in file order.
var CSVHeader = []string{
	"Guest Name", "Phone", "Email", "Guest Code", "Location", "Person to See", "Purpose",
	"Sign-In Time", "Sign-Out Time", "Expected Duration", "Status", "ID Card Assigned", "ID Card Number",
}

type ExportRow struct {
	GuestName        string     `json:"guestName"`
	GuestPhone       string     `json:"guestPhone"`
	GuestEmail       string     `json:"guestEmail"`
	GuestCode        string     `json:"guestCode"`
	Location         string     `json:"location"`
	PersonToSee      string     `json:"personToSee"`
	Purpose          string     `json:"purpose"`
	SignInTime       *time.Time `json:"signInTime"`
	SignOutTime      *time.Time `json:"signOutTime"`
	ExpectedDuration int        `json:"expectedDuration"`
	Status           string     `json:"status"`
	IDCardAssigned   bool       `json:"idCardAssigned"`
	IDCardNumber     string     `json:"idCardNumber"`
	Organization     string     `json:"organization"`
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func NewExportRow(g *models.Guest, orgName string) ExportRow {
	row := ExportRow{
		GuestName:        orDefault(g.GuestName, "N/A"),
		GuestPhone:       orDefault(g.GuestPhone, "N/A"),
		GuestEmail:       orDefault(models.StringValue(g.GuestEmail), "Not provided"),
		GuestCode:        orDefault(g.GuestCode, "N/A"),
		Location:         orDefault(g.Location, "N/A"),
		PersonToSee:      orDefault(g.PersonToSee, "N/A"),
		Purpose:          orDefault(models.StringValue(g.Purpose), "Not specified"),
		SignOutTime:      g.SignOutTime,
		ExpectedDuration: g.ExpectedDuration,
		Status:           orDefault(g.Status, "Unknown"),
		IDCardAssigned:   g.IDCardAssigned,
		IDCardNumber:     orDefault(models.StringValue(g.IDCardNumber), "Not assigned"),
		Organization:     orDefault(orgName, "Unknown"),
	}
	if !g.SignInTime.IsZero() {
		in := g.SignInTime
		row.SignInTime = &in
	}
	return row
}

func parseExportDate(value string) (time.Time, error) {
	if t, err := time.Parse(exportDateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// ParseDateRange turns the startDate/endDate query values into a sign-in
// range. The end date is inclusive of its whole day, in the offset it was
// given in.
func ParseDateRange(startDate, endDate string) (models.DateRange, error) {
	var r models.DateRange

	if startDate != "" {
		t, err := parseExportDate(startDate)
		if err != nil {
			return r, apperrors.BadRequest("Invalid startDate, expected YYYY-MM-DD")
		}
		r.From = t
	}
	if endDate != "" {
		t, err := parseExportDate(endDate)
		if err != nil {
			return r, apperrors.BadRequest("Invalid endDate, expected YYYY-MM-DD")
		}
		// a full timestamp still covers the rest of its calendar day
		r.Until = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
	}
	return r, nil
}

// Export returns the organization's visits that signed in within the range,
// newest sign-in first.
func (s *Service) Export(ctx context.Context, org *models.Organization, startDate, endDate string) ([]ExportRow, error) {
	r, err := ParseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	guests, err := s.guests.ListBySignIn(ctx, org.ID, r)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}

	rows := make([]ExportRow, 0, len(guests))
	for _, g := range guests {
		rows = append(rows, NewExportRow(g, org.Name))
	}
	return rows, nil
}

func formatExportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// WriteCSV writes rows under CSVHeader.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, row := range rows {
		assigned := "No"
		if row.IDCardAssigned {
			assigned = "Yes"
		}
		record := []string{
			row.GuestName,
			row.GuestPhone,
			row.GuestEmail,
			row.GuestCode,
			row.Location,
			row.PersonToSee,
			row.Purpose,
			formatExportTime(row.SignInTime),
			formatExportTime(row.SignOutTime),
			strconv.Itoa(row.ExpectedDuration),
			row.Status,
			assigned,
			row.IDCardNumber,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

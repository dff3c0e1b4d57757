package visits

import (
	"testing"
	"time"

	"visitr/internal/platform/models"
)

func TestIsExpired(t *testing.T) {
	signIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  string
		elapsed time.Duration
		want    bool
	}{
		{"Signed in, within duration", models.StatusSignedIn, 29 * time.Minute, false},
		{"Signed in, exactly at end", models.StatusSignedIn, 30 * time.Minute, false},
		{"Signed in, just past end", models.StatusSignedIn, 30*time.Minute + time.Millisecond, true},
		{"Signed out, long past end", models.StatusSignedOut, 10 * time.Hour, false},
		{"Expired status is not re-derived", models.StatusExpired, 10 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &models.Guest{Status: tt.status, SignInTime: signIn, ExpectedDuration: 30}
			if got := IsExpired(g, signIn.Add(tt.elapsed)); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayStatus(t *testing.T) {
	signIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := &models.Guest{Status: models.StatusSignedIn, SignInTime: signIn, ExpectedDuration: 30}

	if got := DisplayStatus(g, signIn.Add(10*time.Minute)); got != models.StatusSignedIn {
		t.Errorf("DisplayStatus() = %q, want signed-in", got)
	}
	if got := DisplayStatus(g, signIn.Add(31*time.Minute)); got != models.StatusExpired {
		t.Errorf("DisplayStatus() = %q, want expired", got)
	}
}

func TestHasMinimumVisitTimePassed(t *testing.T) {
	signIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		elapsed time.Duration
		want    bool
	}{
		{0, false},
		{14*time.Minute + 59*time.Second, false},
		{15 * time.Minute, true},
		{2 * time.Hour, true},
	}

	for _, tt := range tests {
		if got := HasMinimumVisitTimePassed(signIn, 15, signIn.Add(tt.elapsed)); got != tt.want {
			t.Errorf("HasMinimumVisitTimePassed(elapsed=%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestVisitDuration(t *testing.T) {
	signIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := signIn.Add(16*time.Minute + 31*time.Second)

	if got := VisitDuration(signIn, &out, time.Time{}); got != 17 {
		t.Errorf("VisitDuration() = %d, want 17", got)
	}
	if got := VisitDuration(signIn, nil, signIn.Add(16*time.Minute+29*time.Second)); got != 16 {
		t.Errorf("VisitDuration(nil) = %d, want 16", got)
	}
}

func TestRemainingMinutes(t *testing.T) {
	signIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	g := &models.Guest{Status: models.StatusSignedIn, SignInTime: signIn, ExpectedDuration: 30}

	tests := []struct {
		elapsed time.Duration
		want    int
		text    string
	}{
		{0, 30, "30 min"},
		{10*time.Minute + 30*time.Second, 19, "19 min"},
		{30 * time.Minute, 0, "0 min"},
		{30*time.Minute + time.Second, -1, "Overdue by 1 min"},
		{35 * time.Minute, -5, "Overdue by 5 min"},
	}

	for _, tt := range tests {
		got := RemainingMinutes(g, signIn.Add(tt.elapsed))
		if got != tt.want {
			t.Errorf("RemainingMinutes(elapsed=%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
		if text := FormatRemaining(got); text != tt.text {
			t.Errorf("FormatRemaining(%d) = %q, want %q", got, text, tt.text)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{1, "1 minute"},
		{45, "45 minutes"},
		{60, "1 hour"},
		{65, "1 hour 5 minutes"},
		{121, "2 hours 1 minute"},
		{180, "3 hours"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestGenerateGuestCode(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := GenerateGuestCode()
		if len(code) != 6 || code[0] == '0' {
			t.Fatalf("GenerateGuestCode() = %q, want six digits without a leading zero", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("GenerateGuestCode() = %q contains a non-digit", code)
			}
		}
	}
}

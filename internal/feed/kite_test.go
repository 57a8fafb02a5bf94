package feed

import (
	"testing"
	"time"

	"nifty-butterfly/internal/models"
	"nifty-butterfly/pkg/utils"
)

// expiry returns a UTC midnight, matching how the instrument dump parses
// expiry dates.
func expiry(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSelectNearestExpiry(t *testing.T) {
	all := []models.Instrument{
		{Name: "NIFTY", InstrType: "CE", Strike: 23000, Expiry: expiry("2025-01-15")},
		{Name: "NIFTY", InstrType: "PE", Strike: 23000, Expiry: expiry("2025-01-15")},
		{Name: "NIFTY", InstrType: "CE", Strike: 23000, Expiry: expiry("2025-01-22")},
		{Name: "NIFTY", InstrType: "FUT", Expiry: expiry("2025-01-30")},
		{Name: "BANKNIFTY", InstrType: "CE", Expiry: expiry("2025-01-15")},
		{Name: "NIFTY", InstrType: "CE", Expiry: expiry("2025-01-08")},
	}
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, utils.IndiaLocation)

	current, expiries := selectNearestExpiry(all, "NIFTY", now)

	wantExpiries := []string{"2025-01-15", "2025-01-22"}
	if len(expiries) != len(wantExpiries) {
		t.Fatalf("expiries = %v, want %v", expiries, wantExpiries)
	}
	for i, want := range wantExpiries {
		if expiries[i] != want {
			t.Errorf("expiries[%d] = %q, want %q", i, expiries[i], want)
		}
	}

	if len(current) != 2 {
		t.Fatalf("len(current) = %d, want 2", len(current))
	}
	for _, inst := range current {
		if got := inst.Expiry.Format("2006-01-02"); got != "2025-01-15" {
			t.Errorf("contract expiry = %s, want nearest 2025-01-15", got)
		}
		if inst.Name != "NIFTY" {
			t.Errorf("contract name = %s, want NIFTY", inst.Name)
		}
	}
}

func TestSelectNearestExpiryEarlyMorningIST(t *testing.T) {
	// At 01:00 IST on the 16th the 15th's series has lapsed, even though
	// UTC is still on the 15th.
	all := []models.Instrument{
		{Name: "NIFTY", InstrType: "CE", Expiry: expiry("2025-01-15")},
		{Name: "NIFTY", InstrType: "PE", Expiry: expiry("2025-01-15")},
		{Name: "NIFTY", InstrType: "CE", Expiry: expiry("2025-01-22")},
	}
	now := time.Date(2025, 1, 16, 1, 0, 0, 0, utils.IndiaLocation)

	current, expiries := selectNearestExpiry(all, "NIFTY", now)

	if len(expiries) != 1 || expiries[0] != "2025-01-22" {
		t.Fatalf("expiries = %v, want [2025-01-22]", expiries)
	}
	for _, inst := range current {
		if got := inst.Expiry.Format("2006-01-02"); got != "2025-01-22" {
			t.Errorf("contract expiry = %s, want 2025-01-22", got)
		}
	}
}

func TestSelectNearestExpiryOnExpiryDay(t *testing.T) {
	all := []models.Instrument{
		{Name: "NIFTY", InstrType: "CE", Expiry: expiry("2025-01-15")},
		{Name: "NIFTY", InstrType: "CE", Expiry: expiry("2025-01-22")},
	}
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, utils.IndiaLocation)

	_, expiries := selectNearestExpiry(all, "NIFTY", now)

	if len(expiries) != 2 || expiries[0] != "2025-01-15" {
		t.Fatalf("expiries = %v, want [2025-01-15 2025-01-22]", expiries)
	}
}

func TestSelectNearestExpiryEmpty(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, utils.IndiaLocation)
	current, expiries := selectNearestExpiry(nil, "NIFTY", now)
	if current != nil || expiries != nil {
		t.Errorf("got %v, %v, want nil, nil", current, expiries)
	}
}

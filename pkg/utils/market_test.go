package utils

import (
	"testing"
	"time"

	"nifty-butterfly/internal/models"
)

func istTime(t *testing.T, weekday time.Weekday, hour, minute int) time.Time {
	t.Helper()
	// 2026-08-24 is a Monday
	base := time.Date(2026, 8, 24, hour, minute, 0, 0, IndiaLocation)
	return base.AddDate(0, 0, int(weekday-time.Monday))
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		name    string
		weekday time.Weekday
		hour    int
		minute  int
		want    models.MarketStatus
	}{
		{"before pre-open", time.Monday, 8, 59, models.MarketClosed},
		{"pre-open start", time.Monday, 9, 0, models.MarketPreOpen},
		{"pre-open end", time.Monday, 9, 14, models.MarketPreOpen},
		{"open bell", time.Monday, 9, 15, models.MarketOpen},
		{"midday", time.Wednesday, 12, 30, models.MarketOpen},
		{"last minute", time.Friday, 15, 29, models.MarketOpen},
		{"close bell", time.Monday, 15, 30, models.MarketClosed},
		{"evening", time.Monday, 18, 0, models.MarketClosed},
		{"saturday midday", time.Saturday, 12, 0, models.MarketClosed},
		{"sunday midday", time.Sunday, 12, 0, models.MarketClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := marketStatusAt(istTime(t, tt.weekday, tt.hour, tt.minute))
			if got != tt.want {
				t.Errorf("marketStatusAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetNextMarketOpenSkipsWeekend(t *testing.T) {
	next := GetNextMarketOpen()
	if next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		t.Errorf("next open on a weekend: %v", next)
	}
	if next.Hour() != 9 || next.Minute() != 15 {
		t.Errorf("next open not at 9:15: %v", next)
	}
	if !next.After(time.Now().In(IndiaLocation)) {
		t.Errorf("next open not in the future: %v", next)
	}
}

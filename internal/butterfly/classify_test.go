package butterfly

import (
	"testing"

	"nifty-butterfly/internal/models"
)

func TestGetRecommendation(t *testing.T) {
	tests := []struct {
		value float64
		want  models.Recommendation
	}{
		{0, models.RecommendEntry},
		{5, models.RecommendEntry},
		{10, models.RecommendEntry},
		{10.01, models.RecommendHold},
		{15, models.RecommendHold}, // 15 collapses into the 10-20 HOLD bucket
		{20, models.RecommendHold},
		{20.01, models.RecommendAvoid},
		{100, models.RecommendAvoid},
	}

	for _, tt := range tests {
		if got := GetRecommendation(tt.value); got != tt.want {
			t.Errorf("GetRecommendation(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestGetDetailedRecommendation(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		distance  int
		gap       int
		want      models.Recommendation
		wantAlert models.AlertType
	}{
		{"exit above 25", 30, 0, 50, models.RecommendExit, models.AlertValue},
		{"exit ignores position", 25.1, 10, 500, models.RecommendExit, models.AlertValue},
		{"value breach 20-25", 22, 1, 50, models.RecommendValueBreach, models.AlertValue},
		{"entry near atm good gap", 8, 1, 100, models.RecommendEntry, models.AlertNone},
		{"profit booking near atm wide gap", 8, 2, 150, models.RecommendProfitBooking, models.AlertNone},
		{"scale 10-15 near atm", 13, 2, 150, models.RecommendScale, models.AlertNone},
		{"hold 10-15 far", 13, 5, 100, models.RecommendHold, models.AlertNone},
		{"chain warning far wide", 18, 5, 150, models.RecommendChainWarning, models.AlertChain},
		{"hold 15-20 far but good gap", 18, 5, 100, models.RecommendHold, models.AlertNone},
		{"hold 15-20 near", 18, 1, 150, models.RecommendHold, models.AlertNone},
		{"boundary 10 near good is entry", 10, 2, 100, models.RecommendEntry, models.AlertNone},
		{"boundary 20 far wide is warning", 20, 3, 200, models.RecommendChainWarning, models.AlertChain},
		{"boundary 25 is breach not exit", 25, 0, 50, models.RecommendValueBreach, models.AlertValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, alert := GetDetailedRecommendation(tt.value, tt.distance, tt.gap)
			if got != tt.want {
				t.Errorf("recommendation = %q, want %q", got, tt.want)
			}
			if alert != tt.wantAlert {
				t.Errorf("alert = %q, want %q", alert, tt.wantAlert)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A breached value ceiling must win over any chain position.
	for distance := 0; distance <= 10; distance++ {
		for _, gap := range []int{50, 100, 150, 200, 250} {
			if got, _ := GetDetailedRecommendation(30, distance, gap); got != models.RecommendExit {
				t.Fatalf("value 30, distance %d, gap %d: got %q, want EXIT", distance, gap, got)
			}
		}
	}
}

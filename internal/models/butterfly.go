package models

import "time"

// Recommendation is the action label assigned to a butterfly combination.
type Recommendation string

const (
	RecommendEntry         Recommendation = "ENTRY"
	RecommendHold          Recommendation = "HOLD"
	RecommendAvoid         Recommendation = "AVOID"
	RecommendExit          Recommendation = "EXIT"
	RecommendValueBreach   Recommendation = "VALUE_BREACH"
	RecommendProfitBooking Recommendation = "PROFIT_BOOKING"
	RecommendScale         Recommendation = "SCALE"
	RecommendChainWarning  Recommendation = "CHAIN_WARNING"
)

// AlertType tags the recommendations that warrant attention outside the
// normal entry/hold flow.
type AlertType string

const (
	AlertNone  AlertType = "NONE"
	AlertValue AlertType = "VALUE_ALERT"
	AlertChain AlertType = "CHAIN_ALERT"
)

// ButterflyResult is the priced outcome for one leg tuple and side.
// Derived per query, never stored.
type ButterflyResult struct {
	Rate            float64
	FirstLegPremium float64
}

// GapEntry holds the rate and value percentage of a butterfly at one gap.
type GapEntry struct {
	Rate  float64 `json:"rate"`
	Value float64 `json:"value"`
}

// ButterflyRow is one row of the per-side rate/value matrix: a strike, its
// reference premium, and the priced entry for each configured gap. Gaps with
// a non-positive rate are absent from the map.
type ButterflyRow struct {
	Strike  float64          `json:"strike"`
	Premium float64          `json:"premium"`
	Bid     float64          `json:"bid"`
	Ask     float64          `json:"ask"`
	IsATM   bool             `json:"is_atm"`
	Gaps    map[int]GapEntry `json:"gaps"`
}

// ButterflyStrategy is one ranked shortlist entry.
type ButterflyStrategy struct {
	Type            string         `json:"type"` // CALL_BUTTERFLY, PUT_BUTTERFLY
	StrikeCombo     string         `json:"strike_combo"`
	Strikes         [3]float64     `json:"strikes"` // lower, middle, upper
	Gap             int            `json:"gap"`
	FirstLegPremium float64        `json:"first_leg_premium"`
	ButterflyRate   float64        `json:"butterfly_rate"`
	ValuePercent    float64        `json:"value_percent"`
	DistanceFromATM int            `json:"distance_from_atm"` // in 50-point bands
	Recommendation  Recommendation `json:"recommendation"`
	IsNearATM       bool           `json:"is_near_atm"`
	HasGoodGap      bool           `json:"has_good_gap"`
	AlertType       AlertType      `json:"alert_type"`
}

// ScanRecord is one persisted ranking pass: the shortlist produced for a
// snapshot, kept for journal review. Raw snapshots are not persisted.
type ScanRecord struct {
	ID              string              `json:"id"`
	Symbol          string              `json:"symbol"`
	SpotPrice       float64             `json:"spot_price"`
	MaxValuePercent float64             `json:"max_value_percent"`
	Stale           bool                `json:"stale"`
	Strategies      []ButterflyStrategy `json:"strategies"`
	CreatedAt       time.Time           `json:"created_at"`
}

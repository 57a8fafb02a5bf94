package butterfly

import (
	"testing"

	"nifty-butterfly/internal/models"
)

func TestFindBestStrategiesEligibility(t *testing.T) {
	raw := linearChain(strikeRange(23600, 24800, 50))
	spot := 24200.0

	strategies := FindBestStrategies(raw, spot, 20)
	if len(strategies) == 0 {
		t.Fatal("expected candidates from a dense linear chain")
	}

	for _, s := range strategies {
		switch s.Type {
		case "CALL_BUTTERFLY":
			// The base (lower) leg must be ATM or OTM.
			if s.Strikes[0] < 24200 {
				t.Errorf("ITM call butterfly leaked: %s", s.StrikeCombo)
			}
		case "PUT_BUTTERFLY":
			// The base (upper) leg must be ATM or OTM.
			if s.Strikes[2] > 24200 {
				t.Errorf("ITM put butterfly leaked: %s", s.StrikeCombo)
			}
		default:
			t.Errorf("unexpected strategy type %q", s.Type)
		}
	}
}

func TestFindBestStrategiesSorted(t *testing.T) {
	raw := linearChain(strikeRange(23600, 24800, 50))

	strategies := FindBestStrategies(raw, 24200, 20)
	for i := 1; i < len(strategies); i++ {
		prev, cur := strategies[i-1], strategies[i]
		if cur.ValuePercent < prev.ValuePercent {
			t.Fatalf("not sorted by value: %v before %v", prev.ValuePercent, cur.ValuePercent)
		}
		if cur.ValuePercent == prev.ValuePercent && cur.DistanceFromATM < prev.DistanceFromATM {
			t.Fatalf("tie not broken by distance: %d before %d", prev.DistanceFromATM, cur.DistanceFromATM)
		}
	}
}

func TestFindBestStrategiesValueCeiling(t *testing.T) {
	raw := linearChain(strikeRange(23600, 24800, 50))

	for _, s := range FindBestStrategies(raw, 24200, 5) {
		if s.ValuePercent <= 0 || s.ValuePercent > 5 {
			t.Errorf("value %v outside (0, 5]", s.ValuePercent)
		}
	}
}

func TestFindBestStrategiesSanityBound(t *testing.T) {
	// rate = 100 - 2*26 + 100 = 148 >= 0.5 * 100: implausible, rejected.
	raw := []models.RawContract{
		{StrikePrice: 24000, Side: models.Call, Ask: models.Float(100)},
		{StrikePrice: 24050, Side: models.Call, Bid: models.Float(26)},
		{StrikePrice: 24100, Side: models.Call, Ask: models.Float(100)},
	}

	if got := FindBestStrategies(raw, 24000, 200); len(got) != 0 {
		t.Errorf("degenerate quote passed the sanity bound: %+v", got)
	}
}

func TestFindBestStrategiesZeroPremiumExcluded(t *testing.T) {
	// First leg ask 0 forces valuePercent 0, which fails the > 0 filter.
	raw := []models.RawContract{
		{StrikePrice: 24000, Side: models.Call, Ask: models.Float(0)},
		{StrikePrice: 24050, Side: models.Call, Bid: models.Float(-3)},
		{StrikePrice: 24100, Side: models.Call, Ask: models.Float(8)},
	}

	if got := FindBestStrategies(raw, 24000, 20); len(got) != 0 {
		t.Errorf("zero-premium entry ranked: %+v", got)
	}
}

func TestFindBestStrategiesEmptyInputs(t *testing.T) {
	if got := FindBestStrategies(nil, 24000, 20); len(got) != 0 {
		t.Error("nil chain must yield empty shortlist")
	}
	if got := FindBestStrategies(linearChain([]float64{24000, 24050, 24100}), 0, 20); len(got) != 0 {
		t.Error("missing spot must yield empty shortlist")
	}
}

func TestFindBestStrategiesDistanceBands(t *testing.T) {
	raw := linearChain(strikeRange(23600, 24800, 50))

	for _, s := range FindBestStrategies(raw, 24200, 20) {
		wantNear := s.DistanceFromATM <= 2
		if s.IsNearATM != wantNear {
			t.Errorf("%s: IsNearATM = %v at distance %d", s.StrikeCombo, s.IsNearATM, s.DistanceFromATM)
		}
		wantGood := s.Gap <= 100
		if s.HasGoodGap != wantGood {
			t.Errorf("%s: HasGoodGap = %v at gap %d", s.StrikeCombo, s.HasGoodGap, s.Gap)
		}
	}
}

func TestFindBestTradesConstraints(t *testing.T) {
	raw := linearChain(strikeRange(23400, 25000, 50))

	trades := FindBestTrades(raw, 24200)
	if len(trades) > 8 {
		t.Fatalf("best trades returned %d entries, cap is 8", len(trades))
	}
	for _, s := range trades {
		if s.ValuePercent > 15 {
			t.Errorf("%s: value %v > 15", s.StrikeCombo, s.ValuePercent)
		}
		if s.DistanceFromATM > 2 {
			t.Errorf("%s: distance %d > 2", s.StrikeCombo, s.DistanceFromATM)
		}
		if s.Gap > 100 {
			t.Errorf("%s: gap %d > 100", s.StrikeCombo, s.Gap)
		}
	}
}

func TestScannerCustomGaps(t *testing.T) {
	raw := linearChain(strikeRange(23600, 24800, 25))
	s := NewScanner(Config{Gaps: []int{25}})

	strategies := s.FindBestStrategies(raw, 24200, 20)
	for _, strat := range strategies {
		if strat.Gap != 25 {
			t.Errorf("unexpected gap %d with custom gap table", strat.Gap)
		}
	}
	if len(strategies) == 0 {
		t.Error("custom 25-point gap produced no candidates")
	}
}

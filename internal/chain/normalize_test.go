package chain

import (
	"reflect"
	"testing"

	"nifty-butterfly/internal/models"
)

func TestNormalizeMergesSplitCallRows(t *testing.T) {
	raw := []models.RawContract{
		{StrikePrice: 24000, CallBid: models.Float(101.5)},
		{StrikePrice: 24000, CallAsk: models.Float(103.0)},
	}

	quotes := Normalize(raw)
	if len(quotes) != 1 {
		t.Fatalf("expected 1 strike, got %d", len(quotes))
	}

	q := quotes[0]
	if q.CallBid == nil || *q.CallBid != 101.5 {
		t.Errorf("call bid not merged: %v", q.CallBid)
	}
	if q.CallAsk == nil || *q.CallAsk != 103.0 {
		t.Errorf("call ask not merged: %v", q.CallAsk)
	}
}

func TestNormalizeExcludesSentinelRow(t *testing.T) {
	raw := []models.RawContract{
		{StrikePrice: models.UnderlyingStrike, LTP: models.Float(24070)},
		{StrikePrice: 24000, Side: models.Call, LTP: models.Float(110)},
	}

	quotes := Normalize(raw)
	if len(quotes) != 1 {
		t.Fatalf("expected sentinel row dropped, got %d strikes", len(quotes))
	}
	if quotes[0].Strike != 24000 {
		t.Errorf("unexpected strike %v", quotes[0].Strike)
	}
}

func TestNormalizeRoutesBySide(t *testing.T) {
	raw := []models.RawContract{
		{StrikePrice: 24000, Side: models.Call, Bid: models.Float(100), Ask: models.Float(102)},
		{StrikePrice: 24000, Side: models.Put, Bid: models.Float(80), Ask: models.Float(82)},
	}

	quotes := Normalize(raw)
	if len(quotes) != 1 {
		t.Fatalf("expected 1 strike, got %d", len(quotes))
	}

	q := quotes[0]
	if q.CallBid == nil || *q.CallBid != 100 {
		t.Errorf("call bid = %v, want 100", q.CallBid)
	}
	if q.PutAsk == nil || *q.PutAsk != 82 {
		t.Errorf("put ask = %v, want 82", q.PutAsk)
	}
}

func TestNormalizeInfersSideFromSymbol(t *testing.T) {
	raw := []models.RawContract{
		{StrikePrice: 24000, Symbol: "NIFTY25SEP24000CE", LTP: models.Float(110)},
		{StrikePrice: 24000, Symbol: "NIFTY25SEP24000PE", LTP: models.Float(90)},
	}

	quotes := Normalize(raw)
	if len(quotes) != 1 {
		t.Fatalf("expected 1 strike, got %d", len(quotes))
	}
	q := quotes[0]
	if q.CallLTP == nil || *q.CallLTP != 110 {
		t.Errorf("call ltp = %v, want 110", q.CallLTP)
	}
	if q.PutLTP == nil || *q.PutLTP != 90 {
		t.Errorf("put ltp = %v, want 90", q.PutLTP)
	}
}

func TestNormalizeNilFieldDoesNotOverwrite(t *testing.T) {
	raw := []models.RawContract{
		{StrikePrice: 24000, Side: models.Call, Bid: models.Float(100), Ask: models.Float(102)},
		// Duplicate row for the same strike/side with only a fresher bid.
		{StrikePrice: 24000, Side: models.Call, Bid: models.Float(100.5)},
	}

	quotes := Normalize(raw)
	q := quotes[0]
	if q.CallBid == nil || *q.CallBid != 100.5 {
		t.Errorf("call bid = %v, want last non-nil 100.5", q.CallBid)
	}
	if q.CallAsk == nil || *q.CallAsk != 102 {
		t.Errorf("call ask = %v, want preserved 102", q.CallAsk)
	}
}

func TestNormalizeSortsAscending(t *testing.T) {
	raw := []models.RawContract{
		{StrikePrice: 24100, Side: models.Call, LTP: models.Float(1)},
		{StrikePrice: 23900, Side: models.Call, LTP: models.Float(1)},
		{StrikePrice: 24000, Side: models.Call, LTP: models.Float(1)},
	}

	quotes := Normalize(raw)
	want := []float64{23900, 24000, 24100}
	got := make([]float64, len(quotes))
	for i, q := range quotes {
		got[i] = q.Strike
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("strike order = %v, want %v", got, want)
	}
}

func TestNormalizePreNormalizedPassThrough(t *testing.T) {
	raw := []models.RawContract{
		{StrikePrice: models.UnderlyingStrike},
		{StrikePrice: 24000, CallLTP: models.Float(110), PutLTP: models.Float(90)},
		{StrikePrice: 24050, CallLTP: models.Float(85), PutLTP: models.Float(105)},
	}

	quotes := Normalize(raw)
	if len(quotes) != 2 {
		t.Fatalf("expected 2 strikes, got %d", len(quotes))
	}
	if quotes[0].CallLTP == nil || *quotes[0].CallLTP != 110 {
		t.Errorf("pre-normalized call ltp lost: %v", quotes[0].CallLTP)
	}
	if quotes[1].PutLTP == nil || *quotes[1].PutLTP != 105 {
		t.Errorf("pre-normalized put ltp lost: %v", quotes[1].PutLTP)
	}
}

func TestResolveSide(t *testing.T) {
	tests := []struct {
		name string
		rc   models.RawContract
		want models.OptionSide
	}{
		{"explicit call wins over symbol", models.RawContract{Side: models.Call, Symbol: "NIFTY24000PE"}, models.Call},
		{"CE suffix", models.RawContract{Symbol: "NIFTY25SEP24000CE"}, models.Call},
		{"PE suffix", models.RawContract{Symbol: "NIFTY25SEP24000PE"}, models.Put},
		{"lowercase symbol", models.RawContract{Symbol: "nifty25sep24000ce"}, models.Call},
		{"unresolvable", models.RawContract{Symbol: "NIFTY-FUT"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveSide(&tt.rc); got != tt.want {
				t.Errorf("ResolveSide() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBook(t *testing.T) {
	quotes := []models.StrikeQuote{{Strike: 24000}, {Strike: 24050}}
	book := Book(quotes)
	if len(book) != 2 {
		t.Fatalf("book size = %d, want 2", len(book))
	}
	if _, ok := book[24050]; !ok {
		t.Error("strike 24050 missing from book")
	}
}

package butterfly

import (
	"math"

	"nifty-butterfly/internal/chain"
	"nifty-butterfly/internal/models"
)

// BuildChain builds the per-strike rate/value matrix for one side using the
// default configuration with the given gaps (nil means the default gap set).
func BuildChain(raw []models.RawContract, spot float64, side models.OptionSide, gaps []int) []models.ButterflyRow {
	cfg := DefaultConfig()
	if len(gaps) > 0 {
		cfg.Gaps = gaps
	}
	return NewScanner(cfg).BuildChain(raw, spot, side)
}

// BuildRatioChain builds the multi-leg ratio matrix for one side using the
// default gap/ratio table.
func BuildRatioChain(raw []models.RawContract, spot float64, side models.OptionSide) []models.ButterflyRow {
	return NewDefaultScanner().BuildRatioChain(raw, spot, side)
}

// BuildChain normalizes the raw records and prices every configured gap at
// every strike. Rows are ordered ascending for calls and descending for puts
// (display order). Only gap entries with a strictly positive rate are kept;
// a non-positive butterfly cost is noise, not an error.
func (s *Scanner) BuildChain(raw []models.RawContract, spot float64, side models.OptionSide) []models.ButterflyRow {
	return s.buildMatrix(raw, spot, side, func(base float64, book map[float64]models.StrikeQuote) map[int]models.GapEntry {
		entries := make(map[int]models.GapEntry)
		for _, gap := range s.cfg.Gaps {
			lower, middle, upper := Legs(base, gap, side)
			res, ok := Price(lower, middle, upper, book, side)
			if !ok || res.Rate <= 0 {
				continue
			}
			entries[gap] = models.GapEntry{
				Rate:  res.Rate,
				Value: ValuePercent(res.Rate, res.FirstLegPremium),
			}
		}
		return entries
	})
}

// BuildRatioChain is the multi-leg counterpart of BuildChain: each configured
// gap is priced with its own middle-leg ratio via the two-leg form.
func (s *Scanner) BuildRatioChain(raw []models.RawContract, spot float64, side models.OptionSide) []models.ButterflyRow {
	return s.buildMatrix(raw, spot, side, func(base float64, book map[float64]models.StrikeQuote) map[int]models.GapEntry {
		entries := make(map[int]models.GapEntry)
		for _, leg := range s.cfg.RatioLegs {
			middle := base + float64(leg.Gap)
			if side == models.Put {
				middle = base - float64(leg.Gap)
			}
			res, ok := PriceRatio(base, middle, book, side, leg.Ratio)
			if !ok || res.Rate <= 0 {
				continue
			}
			entries[leg.Gap] = models.GapEntry{
				Rate:  res.Rate,
				Value: ValuePercent(res.Rate, res.FirstLegPremium),
			}
		}
		return entries
	})
}

func (s *Scanner) buildMatrix(raw []models.RawContract, spot float64, side models.OptionSide, priceGaps func(float64, map[float64]models.StrikeQuote) map[int]models.GapEntry) []models.ButterflyRow {
	quotes := chain.Normalize(raw)
	if len(quotes) == 0 || spot <= 0 {
		return []models.ButterflyRow{}
	}

	book := chain.Book(quotes)
	atm := atmStrike(quotes, spot)

	ordered := quotes
	if side == models.Put {
		ordered = make([]models.StrikeQuote, len(quotes))
		for i, q := range quotes {
			ordered[len(quotes)-1-i] = q
		}
	}

	rows := make([]models.ButterflyRow, 0, len(ordered))
	for _, q := range ordered {
		bid, ask, ltp := sidePrices(q, side)
		rows = append(rows, models.ButterflyRow{
			Strike:  q.Strike,
			Premium: referencePremium(bid, ask, ltp),
			Bid:     deref(bid),
			Ask:     deref(ask),
			IsATM:   q.Strike == atm,
			Gaps:    priceGaps(q.Strike, book),
		})
	}

	return rows
}

// atmStrike returns the strike closest to spot. Quotes arrive sorted
// ascending and the comparison is strict, so on an exact-distance tie the
// first (lowest) strike wins; there is no nearest-lower or nearest-higher
// special case.
func atmStrike(quotes []models.StrikeQuote, spot float64) float64 {
	var atm float64
	best := math.MaxFloat64
	for _, q := range quotes {
		if d := math.Abs(q.Strike - spot); d < best {
			best = d
			atm = q.Strike
		}
	}
	return atm
}

// referencePremium is the mid price when both sides of the book are quoted,
// else the last traded price, else 0.
func referencePremium(bid, ask, ltp *float64) float64 {
	if bid != nil && ask != nil {
		return (*bid + *ask) / 2
	}
	if ltp != nil {
		return *ltp
	}
	return 0
}

func sidePrices(q models.StrikeQuote, side models.OptionSide) (bid, ask, ltp *float64) {
	if side == models.Put {
		return q.PutBid, q.PutAsk, q.PutLTP
	}
	return q.CallBid, q.CallAsk, q.CallLTP
}

func deref(v *float64) float64 {
	if v != nil {
		return *v
	}
	return 0
}

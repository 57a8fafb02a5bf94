package butterfly

import (
	"fmt"
	"math"
	"sort"

	"nifty-butterfly/internal/chain"
	"nifty-butterfly/internal/models"
)

// FindBestStrategies ranks every side × gap × base-strike combination using
// the default configuration. maxValuePercent <= 0 means the default ceiling.
func FindBestStrategies(raw []models.RawContract, spot, maxValuePercent float64) []models.ButterflyStrategy {
	return NewDefaultScanner().FindBestStrategies(raw, spot, maxValuePercent)
}

// FindBestTrades returns the tightest shortlist using the default
// configuration: near-ATM, narrow-gap entries capped to the first eight.
func FindBestTrades(raw []models.RawContract, spot float64) []models.ButterflyStrategy {
	return NewDefaultScanner().FindBestTrades(raw, spot)
}

// FindBestStrategies enumerates every (side, gap, base strike) combination,
// filters to actionable candidates, and returns them sorted by ascending
// value percentage with distance from ATM as the tie-break.
//
// Eligibility: call butterflies only from the ATM strike outwards (base ≥
// ATM), put butterflies mirrored (base ≤ ATM) — in-the-money bases are never
// candidates. A candidate must price with rate > 0 and below the sanity
// bound (half the first leg's premium by default), and its value percentage
// must land in (0, maxValuePercent].
//
// Empty chain or missing spot price yields an empty slice, never an error.
func (s *Scanner) FindBestStrategies(raw []models.RawContract, spot, maxValuePercent float64) []models.ButterflyStrategy {
	if maxValuePercent <= 0 {
		maxValuePercent = s.cfg.MaxValuePercent
	}

	quotes := chain.Normalize(raw)
	if len(quotes) == 0 || spot <= 0 {
		return []models.ButterflyStrategy{}
	}

	book := chain.Book(quotes)
	atm := atmStrike(quotes, spot)

	strategies := []models.ButterflyStrategy{}
	for _, side := range []models.OptionSide{models.Call, models.Put} {
		for _, gap := range s.cfg.Gaps {
			for _, q := range quotes {
				if strat, ok := s.evaluate(q.Strike, gap, side, atm, maxValuePercent, book); ok {
					strategies = append(strategies, strat)
				}
			}
		}
	}

	sort.SliceStable(strategies, func(i, j int) bool {
		if strategies[i].ValuePercent != strategies[j].ValuePercent {
			return strategies[i].ValuePercent < strategies[j].ValuePercent
		}
		return strategies[i].DistanceFromATM < strategies[j].DistanceFromATM
	})

	return strategies
}

// FindBestTrades narrows the ranked shortlist to entries with value within
// the trade ceiling, at most NearATMBands bands from ATM, and a gap no wider
// than GoodGapMax, capped to the first MaxTrades after sorting.
func (s *Scanner) FindBestTrades(raw []models.RawContract, spot float64) []models.ButterflyStrategy {
	ranked := s.FindBestStrategies(raw, spot, s.cfg.TradeValuePercent)

	trades := []models.ButterflyStrategy{}
	for _, strat := range ranked {
		if strat.ValuePercent > s.cfg.TradeValuePercent {
			continue
		}
		if strat.DistanceFromATM > s.cfg.NearATMBands || strat.Gap > s.cfg.GoodGapMax {
			continue
		}
		trades = append(trades, strat)
		if len(trades) == s.cfg.MaxTrades {
			break
		}
	}
	return trades
}

func (s *Scanner) evaluate(base float64, gap int, side models.OptionSide, atm, maxValuePercent float64, book map[float64]models.StrikeQuote) (models.ButterflyStrategy, bool) {
	// ATM-or-OTM bases only.
	if side == models.Call && base < atm {
		return models.ButterflyStrategy{}, false
	}
	if side == models.Put && base > atm {
		return models.ButterflyStrategy{}, false
	}

	lower, middle, upper := Legs(base, gap, side)
	res, ok := Price(lower, middle, upper, book, side)
	if !ok {
		return models.ButterflyStrategy{}, false
	}
	if res.Rate <= 0 || res.Rate >= s.cfg.RateSanityFactor*res.FirstLegPremium {
		return models.ButterflyStrategy{}, false
	}

	value := ValuePercent(res.Rate, res.FirstLegPremium)
	if value <= 0 || value > maxValuePercent {
		return models.ButterflyStrategy{}, false
	}

	distance := int(math.Round(math.Abs(lower-atm) / s.cfg.BandWidth))
	rec, alert := s.classify(value, distance, gap)

	kind := "CALL_BUTTERFLY"
	if side == models.Put {
		kind = "PUT_BUTTERFLY"
	}

	return models.ButterflyStrategy{
		Type:            kind,
		StrikeCombo:     fmt.Sprintf("%.0f/%.0f/%.0f", lower, middle, upper),
		Strikes:         [3]float64{lower, middle, upper},
		Gap:             gap,
		FirstLegPremium: res.FirstLegPremium,
		ButterflyRate:   res.Rate,
		ValuePercent:    value,
		DistanceFromATM: distance,
		Recommendation:  rec,
		IsNearATM:       distance <= s.cfg.NearATMBands,
		HasGoodGap:      gap <= s.cfg.GoodGapMax,
		AlertType:       alert,
	}, true
}

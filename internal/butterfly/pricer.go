package butterfly

import (
	"nifty-butterfly/internal/models"
)

// Legs derives the three strikes of a butterfly from a base strike and gap.
// For calls the base is the lower bought leg; for puts it is the upper one.
func Legs(base float64, gap int, side models.OptionSide) (lower, middle, upper float64) {
	g := float64(gap)
	if side == models.Put {
		return base - 2*g, base - g, base
	}
	return base, base + g, base + 2*g
}

// Price computes the 1-2-1 butterfly for the given leg strikes and side.
//
// The two bought legs use the ask, falling back to last traded price; the
// sold middle leg uses the bid with the same fallback. If any of the three
// strikes is missing from the book, or a required price is still nil after
// fallback, the butterfly is simply not computable and ok is false — absence
// is an expected outcome, not an error.
func Price(lower, middle, upper float64, book map[float64]models.StrikeQuote, side models.OptionSide) (models.ButterflyResult, bool) {
	lq, ok := book[lower]
	if !ok {
		return models.ButterflyResult{}, false
	}
	mq, ok := book[middle]
	if !ok {
		return models.ButterflyResult{}, false
	}
	uq, ok := book[upper]
	if !ok {
		return models.ButterflyResult{}, false
	}

	var lowerBuy, middleSell, upperBuy *float64
	switch side {
	case models.Call:
		lowerBuy = firstOf(lq.CallAsk, lq.CallLTP)
		middleSell = firstOf(mq.CallBid, mq.CallLTP)
		upperBuy = firstOf(uq.CallAsk, uq.CallLTP)
	case models.Put:
		lowerBuy = firstOf(lq.PutAsk, lq.PutLTP)
		middleSell = firstOf(mq.PutBid, mq.PutLTP)
		upperBuy = firstOf(uq.PutAsk, uq.PutLTP)
	default:
		return models.ButterflyResult{}, false
	}

	if lowerBuy == nil || middleSell == nil || upperBuy == nil {
		return models.ButterflyResult{}, false
	}

	first := *lowerBuy
	if side == models.Put {
		first = *upperBuy
	}

	return models.ButterflyResult{
		Rate:            *lowerBuy - 2*(*middleSell) + *upperBuy,
		FirstLegPremium: first,
	}, true
}

// PriceRatio computes the generalized two-leg form used by multi-leg
// configurations: rate = baseAsk − ratio × middleBid. The base leg is bought
// (ask, falling back to LTP) and the middle leg sold (bid, falling back to
// LTP); the base leg's buy price is the reference premium.
func PriceRatio(base, middle float64, book map[float64]models.StrikeQuote, side models.OptionSide, ratio float64) (models.ButterflyResult, bool) {
	bq, ok := book[base]
	if !ok {
		return models.ButterflyResult{}, false
	}
	mq, ok := book[middle]
	if !ok {
		return models.ButterflyResult{}, false
	}

	var baseBuy, middleSell *float64
	switch side {
	case models.Call:
		baseBuy = firstOf(bq.CallAsk, bq.CallLTP)
		middleSell = firstOf(mq.CallBid, mq.CallLTP)
	case models.Put:
		baseBuy = firstOf(bq.PutAsk, bq.PutLTP)
		middleSell = firstOf(mq.PutBid, mq.PutLTP)
	default:
		return models.ButterflyResult{}, false
	}

	if baseBuy == nil || middleSell == nil {
		return models.ButterflyResult{}, false
	}

	return models.ButterflyResult{
		Rate:            *baseBuy - ratio*(*middleSell),
		FirstLegPremium: *baseBuy,
	}, true
}

// ValuePercent normalizes a butterfly rate by its first bought leg's
// premium. A non-positive premium yields 0 rather than a division by zero;
// such entries are filtered out downstream.
func ValuePercent(rate, firstLegPremium float64) float64 {
	if firstLegPremium > 0 {
		return (rate / firstLegPremium) * 100
	}
	return 0
}

func firstOf(preferred, fallback *float64) *float64 {
	if preferred != nil {
		return preferred
	}
	return fallback
}

// Package chain turns raw, inconsistently shaped option-chain records into
// canonical per-strike quotes.
package chain

import (
	"sort"
	"strings"

	"nifty-butterfly/internal/models"
)

// Normalize merges an unordered list of raw contract records into one
// StrikeQuote per unique strike, sorted ascending.
//
// The underlying-index sentinel row and non-positive strikes are dropped.
// Rows carrying pre-merged call_*/put_* fields and rows carrying single-side
// fields (routed by the declared side, else a CE/PE symbol substring) both
// land in the same record. A nil field never overwrites a value set by an
// earlier row for the same strike, so partial and duplicate feed rows
// accumulate instead of clobbering each other.
//
// Pure function of its input; a pre-normalized list passes through unchanged
// apart from sentinel removal and ordering.
func Normalize(raw []models.RawContract) []models.StrikeQuote {
	byStrike := make(map[float64]*models.StrikeQuote)

	for i := range raw {
		rc := &raw[i]
		if rc.StrikePrice <= 0 {
			continue
		}

		sq, ok := byStrike[rc.StrikePrice]
		if !ok {
			sq = &models.StrikeQuote{Strike: rc.StrikePrice}
			byStrike[rc.StrikePrice] = sq
		}

		mergePreNormalized(sq, rc)

		switch ResolveSide(rc) {
		case models.Call:
			assign(&sq.CallLTP, rc.LTP)
			assign(&sq.CallBid, rc.Bid)
			assign(&sq.CallAsk, rc.Ask)
			assign(&sq.CallOI, rc.OI)
			assign(&sq.CallVolume, rc.Volume)
			assign(&sq.CallIV, rc.IV)
			assign(&sq.CallChange, rc.Change)
			assign(&sq.CallOIChange, rc.OIChange)
		case models.Put:
			assign(&sq.PutLTP, rc.LTP)
			assign(&sq.PutBid, rc.Bid)
			assign(&sq.PutAsk, rc.Ask)
			assign(&sq.PutOI, rc.OI)
			assign(&sq.PutVolume, rc.Volume)
			assign(&sq.PutIV, rc.IV)
			assign(&sq.PutChange, rc.Change)
			assign(&sq.PutOIChange, rc.OIChange)
		}
	}

	quotes := make([]models.StrikeQuote, 0, len(byStrike))
	for _, sq := range byStrike {
		quotes = append(quotes, *sq)
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Strike < quotes[j].Strike })

	return quotes
}

// Book indexes normalized quotes by strike for leg lookups.
func Book(quotes []models.StrikeQuote) map[float64]models.StrikeQuote {
	book := make(map[float64]models.StrikeQuote, len(quotes))
	for _, q := range quotes {
		book[q.Strike] = q
	}
	return book
}

// ResolveSide determines the option side of a raw record, preferring the
// declared side over symbol inference. The side is resolved exactly once
// here; downstream code only ever sees the explicit tag.
func ResolveSide(rc *models.RawContract) models.OptionSide {
	switch rc.Side {
	case models.Call, models.Put:
		return rc.Side
	}
	return sideFromSymbol(rc.Symbol)
}

func sideFromSymbol(symbol string) models.OptionSide {
	s := strings.ToUpper(symbol)
	switch {
	case strings.HasSuffix(s, "CE"):
		return models.Call
	case strings.HasSuffix(s, "PE"):
		return models.Put
	case strings.Contains(s, "CE"):
		return models.Call
	case strings.Contains(s, "PE"):
		return models.Put
	}
	return ""
}

func mergePreNormalized(sq *models.StrikeQuote, rc *models.RawContract) {
	assign(&sq.CallLTP, rc.CallLTP)
	assign(&sq.CallBid, rc.CallBid)
	assign(&sq.CallAsk, rc.CallAsk)
	assign(&sq.CallOI, rc.CallOI)
	assign(&sq.CallVolume, rc.CallVolume)
	assign(&sq.CallIV, rc.CallIV)
	assign(&sq.CallChange, rc.CallChange)
	assign(&sq.CallOIChange, rc.CallOIChange)

	assign(&sq.PutLTP, rc.PutLTP)
	assign(&sq.PutBid, rc.PutBid)
	assign(&sq.PutAsk, rc.PutAsk)
	assign(&sq.PutOI, rc.PutOI)
	assign(&sq.PutVolume, rc.PutVolume)
	assign(&sq.PutIV, rc.PutIV)
	assign(&sq.PutChange, rc.PutChange)
	assign(&sq.PutOIChange, rc.PutOIChange)
}

// assign copies src over dst only when src is present, so the last non-nil
// value per field wins across duplicate rows.
func assign(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

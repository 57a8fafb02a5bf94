package chain

import (
	"strconv"

	"nifty-butterfly/internal/models"
)

// Upstream sources disagree on field names. Each canonical field has an
// ordered list of source keys to try; the first key present in the record
// wins. This table is the single place aliasing is handled.
var fieldAliases = map[string][]string{
	"strike":    {"strikePrice", "strike_price", "strike"},
	"symbol":    {"tradingsymbol", "trading_symbol", "identifier", "symbol", "instrument_key"},
	"side":      {"optionType", "option_type", "instrumentType", "instrument_type", "side", "type"},
	"ltp":       {"lastPrice", "last_price", "lastTradedPrice", "last_traded_price", "ltp"},
	"bid":       {"bidprice", "bidPrice", "bid_price", "buyPrice1", "bid"},
	"ask":       {"askPrice", "ask_price", "sellPrice1", "offer_price", "ask"},
	"oi":        {"openInterest", "open_interest", "oi"},
	"volume":    {"totalTradedVolume", "total_traded_volume", "tradedVolume", "volume", "vol"},
	"iv":        {"impliedVolatility", "implied_volatility", "iv"},
	"change":    {"change", "priceChange", "price_change", "net_change"},
	"oi_change": {"changeinOpenInterest", "change_in_oi", "openInterestChange", "oi_change"},
}

// DecodeContract resolves one loosely shaped record (a decoded JSON object)
// into a RawContract. Fields that cannot be resolved from any alias are left
// nil; the record is still usable for whatever fields it does carry.
func DecodeContract(rec map[string]interface{}) models.RawContract {
	rc := models.RawContract{
		StrikePrice: models.UnderlyingStrike,
	}

	if v, ok := lookupNumber(rec, "strike"); ok {
		rc.StrikePrice = v
	}
	if s, ok := lookupString(rec, "symbol"); ok {
		rc.Symbol = s
	}
	if s, ok := lookupString(rec, "side"); ok {
		switch s {
		case "CE", "CALL", "call":
			rc.Side = models.Call
		case "PE", "PUT", "put":
			rc.Side = models.Put
		}
	}

	rc.LTP = lookupOptional(rec, "ltp")
	rc.Bid = lookupOptional(rec, "bid")
	rc.Ask = lookupOptional(rec, "ask")
	rc.OI = lookupOptional(rec, "oi")
	rc.Volume = lookupOptional(rec, "volume")
	rc.IV = lookupOptional(rec, "iv")
	rc.Change = lookupOptional(rec, "change")
	rc.OIChange = lookupOptional(rec, "oi_change")

	return rc
}

// DecodeContracts resolves a list of loose records.
func DecodeContracts(recs []map[string]interface{}) []models.RawContract {
	contracts := make([]models.RawContract, 0, len(recs))
	for _, rec := range recs {
		contracts = append(contracts, DecodeContract(rec))
	}
	return contracts
}

func lookupOptional(rec map[string]interface{}, field string) *float64 {
	if v, ok := lookupNumber(rec, field); ok {
		return &v
	}
	return nil
}

func lookupNumber(rec map[string]interface{}, field string) (float64, bool) {
	for _, key := range fieldAliases[field] {
		raw, ok := rec[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func lookupString(rec map[string]interface{}, field string) (string, bool) {
	for _, key := range fieldAliases[field] {
		if raw, ok := rec[key]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

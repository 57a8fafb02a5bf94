package models

import "time"

// OptionSide identifies a contract as a call or a put.
type OptionSide string

const (
	Call OptionSide = "CALL"
	Put  OptionSide = "PUT"
)

// UnderlyingStrike is the sentinel strike used by upstream feeds to mark the
// index/underlying row rather than an option contract.
const UnderlyingStrike = -1

// RawContract is one upstream quote line as delivered by a feed. Every price
// field is optional: upstream sources drop fields freely and may split a
// strike's data across several rows. A row carries either per-contract fields
// (Side or a CE/PE symbol, plus LTP/Bid/Ask...) or per-side fields
// (CallLTP/PutBid/...) when the source pre-merges calls and puts.
type RawContract struct {
	StrikePrice float64    `csv:"strike_price" json:"strike_price"`
	Symbol      string     `csv:"symbol" json:"symbol,omitempty"`
	Side        OptionSide `csv:"side" json:"side,omitempty"`

	LTP      *float64 `csv:"ltp" json:"ltp,omitempty"`
	Bid      *float64 `csv:"bid" json:"bid,omitempty"`
	Ask      *float64 `csv:"ask" json:"ask,omitempty"`
	OI       *float64 `csv:"oi" json:"oi,omitempty"`
	Volume   *float64 `csv:"volume" json:"volume,omitempty"`
	IV       *float64 `csv:"iv" json:"iv,omitempty"`
	Change   *float64 `csv:"change" json:"change,omitempty"`
	OIChange *float64 `csv:"oi_change" json:"oi_change,omitempty"`

	CallLTP      *float64 `csv:"call_ltp" json:"call_ltp,omitempty"`
	CallBid      *float64 `csv:"call_bid" json:"call_bid,omitempty"`
	CallAsk      *float64 `csv:"call_ask" json:"call_ask,omitempty"`
	CallOI       *float64 `csv:"call_oi" json:"call_oi,omitempty"`
	CallVolume   *float64 `csv:"call_volume" json:"call_volume,omitempty"`
	CallIV       *float64 `csv:"call_iv" json:"call_iv,omitempty"`
	CallChange   *float64 `csv:"call_change" json:"call_change,omitempty"`
	CallOIChange *float64 `csv:"call_oi_change" json:"call_oi_change,omitempty"`

	PutLTP      *float64 `csv:"put_ltp" json:"put_ltp,omitempty"`
	PutBid      *float64 `csv:"put_bid" json:"put_bid,omitempty"`
	PutAsk      *float64 `csv:"put_ask" json:"put_ask,omitempty"`
	PutOI       *float64 `csv:"put_oi" json:"put_oi,omitempty"`
	PutVolume   *float64 `csv:"put_volume" json:"put_volume,omitempty"`
	PutIV       *float64 `csv:"put_iv" json:"put_iv,omitempty"`
	PutChange   *float64 `csv:"put_change" json:"put_change,omitempty"`
	PutOIChange *float64 `csv:"put_oi_change" json:"put_oi_change,omitempty"`
}

// StrikeQuote is the canonical per-strike record: call and put quotes merged
// under one positive, unique strike. Built fresh from each snapshot and never
// mutated afterwards.
type StrikeQuote struct {
	Strike float64

	CallBid      *float64
	CallAsk      *float64
	CallLTP      *float64
	CallOI       *float64
	CallVolume   *float64
	CallIV       *float64
	CallChange   *float64
	CallOIChange *float64

	PutBid      *float64
	PutAsk      *float64
	PutLTP      *float64
	PutOI       *float64
	PutVolume   *float64
	PutIV       *float64
	PutChange   *float64
	PutOIChange *float64
}

// ChainSnapshot is the contract the data-acquisition layer delivers to
// consumers: an atomically consistent view of the chain at one instant.
// Stale is set when the last refresh against upstream failed and the
// snapshot is being served from the previous good fetch; the analysis
// packages never inspect it.
type ChainSnapshot struct {
	Symbol      string        `json:"symbol"`
	Contracts   []RawContract `json:"contracts"`
	SpotPrice   float64       `json:"spot_price"`
	ExpiryDates []string      `json:"expiry_dates,omitempty"`
	Stale       bool          `json:"stale"`
	FetchedAt   time.Time     `json:"fetched_at"`
}

// Package butterfly prices butterfly spreads across a normalized option
// chain and ranks strike/gap combinations into trade recommendations.
package butterfly

// RatioLeg pairs a strike gap with the multiplier applied to the sold middle
// leg in the generalized (non 1:2:1) butterfly variant.
type RatioLeg struct {
	Gap   int     `json:"gap" mapstructure:"gap"`
	Ratio float64 `json:"ratio" mapstructure:"ratio"`
}

// Config holds the tunable tables and thresholds of the scanner. The gap and
// ratio tables are data, not constants, so chains can be built against
// arbitrary leg sets.
type Config struct {
	Gaps              []int      // strike gaps for 1-2-1 butterflies
	RatioLegs         []RatioLeg // gap/ratio pairs for the multi-leg variant
	MaxValuePercent   float64    // shortlist inclusion ceiling
	TradeValuePercent float64    // tighter ceiling for best-trades
	NearATMBands      int        // bands from ATM still counted "near"
	GoodGapMax        int        // widest gap still counted "good"
	MaxTrades         int        // best-trades result cap
	BandWidth         float64    // points per distance band
	RateSanityFactor  float64    // reject rate >= factor * first leg premium
}

// DefaultConfig returns the scanner defaults for NIFTY weekly chains.
func DefaultConfig() Config {
	return Config{
		Gaps: []int{50, 100, 150, 200},
		RatioLegs: []RatioLeg{
			{Gap: 50, Ratio: 1.33},
			{Gap: 100, Ratio: 1.5},
			{Gap: 150, Ratio: 1.5},
			{Gap: 200, Ratio: 2.0},
			{Gap: 250, Ratio: 2.0},
		},
		MaxValuePercent:   20,
		TradeValuePercent: 15,
		NearATMBands:      2,
		GoodGapMax:        100,
		MaxTrades:         8,
		BandWidth:         50,
		RateSanityFactor:  0.5,
	}
}

// Scanner evaluates chains under a fixed configuration.
type Scanner struct {
	cfg Config
}

// NewScanner creates a scanner with the given configuration. Zero-valued
// tables and thresholds fall back to the defaults.
func NewScanner(cfg Config) *Scanner {
	def := DefaultConfig()
	if len(cfg.Gaps) == 0 {
		cfg.Gaps = def.Gaps
	}
	if len(cfg.RatioLegs) == 0 {
		cfg.RatioLegs = def.RatioLegs
	}
	if cfg.MaxValuePercent <= 0 {
		cfg.MaxValuePercent = def.MaxValuePercent
	}
	if cfg.TradeValuePercent <= 0 {
		cfg.TradeValuePercent = def.TradeValuePercent
	}
	if cfg.NearATMBands <= 0 {
		cfg.NearATMBands = def.NearATMBands
	}
	if cfg.GoodGapMax <= 0 {
		cfg.GoodGapMax = def.GoodGapMax
	}
	if cfg.MaxTrades <= 0 {
		cfg.MaxTrades = def.MaxTrades
	}
	if cfg.BandWidth <= 0 {
		cfg.BandWidth = def.BandWidth
	}
	if cfg.RateSanityFactor <= 0 {
		cfg.RateSanityFactor = def.RateSanityFactor
	}
	return &Scanner{cfg: cfg}
}

// NewDefaultScanner creates a scanner with DefaultConfig.
func NewDefaultScanner() *Scanner {
	return NewScanner(DefaultConfig())
}

// Config returns the scanner's effective configuration.
func (s *Scanner) Config() Config {
	return s.cfg
}

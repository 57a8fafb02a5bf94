package butterfly

import (
	"nifty-butterfly/internal/models"
)

// GetRecommendation maps a value percentage to the coarse three-bucket
// label. The 10–15 and 15–20 ranges deliberately collapse into HOLD; the 15
// threshold only exists in the detailed classifier.
func GetRecommendation(valuePercent float64) models.Recommendation {
	switch {
	case valuePercent <= 10:
		return models.RecommendEntry
	case valuePercent <= 20:
		return models.RecommendHold
	default:
		return models.RecommendAvoid
	}
}

// GetDetailedRecommendation combines value with chain position: proximity to
// ATM (distance in bands) and gap quality. Uses the default near/good
// thresholds (2 bands, gap ≤ 100).
func GetDetailedRecommendation(valuePercent float64, distanceFromATM, gap int) (models.Recommendation, models.AlertType) {
	return NewDefaultScanner().classify(valuePercent, distanceFromATM, gap)
}

// Classify labels a (value, distance, gap) triple under the scanner's
// thresholds.
func (s *Scanner) Classify(valuePercent float64, distanceFromATM, gap int) (models.Recommendation, models.AlertType) {
	return s.classify(valuePercent, distanceFromATM, gap)
}

// classify is total: every (value, distance, gap) triple maps to exactly one
// label, evaluated in strict priority order. Breaches rank above entries so
// a blown value ceiling is never masked by favorable chain position.
func (s *Scanner) classify(valuePercent float64, distanceFromATM, gap int) (models.Recommendation, models.AlertType) {
	nearATM := distanceFromATM <= s.cfg.NearATMBands
	goodGap := gap <= s.cfg.GoodGapMax

	switch {
	case valuePercent > 25:
		return models.RecommendExit, models.AlertValue
	case valuePercent > 20:
		return models.RecommendValueBreach, models.AlertValue
	case valuePercent <= 10 && nearATM && goodGap:
		return models.RecommendEntry, models.AlertNone
	case valuePercent <= 10 && nearATM:
		return models.RecommendProfitBooking, models.AlertNone
	case valuePercent <= 15 && nearATM:
		return models.RecommendScale, models.AlertNone
	case valuePercent <= 15:
		return models.RecommendHold, models.AlertNone
	case valuePercent <= 20 && !nearATM && !goodGap:
		return models.RecommendChainWarning, models.AlertChain
	case valuePercent <= 20:
		return models.RecommendHold, models.AlertNone
	default:
		// Unreachable for finite inputs; NaN lands here.
		return models.RecommendAvoid, models.AlertNone
	}
}

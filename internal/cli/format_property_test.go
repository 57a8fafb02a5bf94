package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any amount, FormatIndianCurrency should:
// 1. Carry the ₹ symbol (prefixed with - for negatives)
// 2. Have exactly 2 decimal places
// 3. Group digits per the Indian numbering system
// 4. Preserve the numeric value when parsed back
func TestIndianCurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	indianPattern := regexp.MustCompile(`^(\d{1,2},)*\d{1,3}$`)

	properties.Property("FormatIndianCurrency produces valid Indian format", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}
			if math.Abs(amount) > 1e12 {
				return true
			}

			formatted := FormatIndianCurrency(amount)

			if amount >= 0 {
				if !strings.HasPrefix(formatted, "₹") {
					return false
				}
			} else if !strings.HasPrefix(formatted, "-₹") {
				return false
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				return false
			}

			numPart := strings.TrimPrefix(parts[0], "-")
			numPart = strings.TrimPrefix(numPart, "₹")
			if !indianPattern.MatchString(numPart) {
				return false
			}

			// Round trip: strip grouping and parse back
			plain := strings.ReplaceAll(numPart, ",", "") + "." + parts[1]
			parsed, err := strconv.ParseFloat(plain, 64)
			if err != nil {
				return false
			}
			return math.Abs(parsed-math.Abs(amount)) < 0.005+math.Abs(amount)*1e-9
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestPaddingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("PadLeft result is at least the requested length", prop.ForAll(
		func(s string, length int) bool {
			padded := PadLeft(s, length)
			if len(s) >= length {
				return padded == s
			}
			return len(padded) == length && strings.HasSuffix(padded, s)
		},
		gen.AlphaString(),
		gen.IntRange(0, 40),
	))

	properties.Property("PadRight result is at least the requested length", prop.ForAll(
		func(s string, length int) bool {
			padded := PadRight(s, length)
			if len(s) >= length {
				return padded == s
			}
			return len(padded) == length && strings.HasPrefix(padded, s)
		},
		gen.AlphaString(),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

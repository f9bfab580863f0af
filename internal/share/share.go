// Package share converts PropertyInputs to and from the compact query string
// used in shareable links.
package share

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/iwvelando/property-valuation/internal/valuation"
	"github.com/iwvelando/property-valuation/pkg/policy"
)

// field binds one short key to a PropertyInputs field.
type field struct {
	key    string
	encode func(in *valuation.PropertyInputs) string
	decode func(in *valuation.PropertyInputs, value string) bool
}

func floatField(key string, ptr func(*valuation.PropertyInputs) *float64) field {
	return field{
		key: key,
		encode: func(in *valuation.PropertyInputs) string {
			return strconv.FormatFloat(*ptr(in), 'f', -1, 64)
		},
		decode: func(in *valuation.PropertyInputs, value string) bool {
			v, err := strconv.ParseFloat(value, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
			*ptr(in) = v
			return true
		},
	}
}

func intField(key string, ptr func(*valuation.PropertyInputs) *int) field {
	return field{
		key: key,
		encode: func(in *valuation.PropertyInputs) string {
			return strconv.Itoa(*ptr(in))
		},
		decode: func(in *valuation.PropertyInputs, value string) bool {
			v, err := strconv.Atoi(value)
			if err != nil {
				return false
			}
			*ptr(in) = v
			return true
		},
	}
}

func boolField(key string, ptr func(*valuation.PropertyInputs) *bool) field {
	return field{
		key: key,
		encode: func(in *valuation.PropertyInputs) string {
			if *ptr(in) {
				return "1"
			}
			return "0"
		},
		decode: func(in *valuation.PropertyInputs, value string) bool {
			switch value {
			case "1":
				*ptr(in) = true
			case "0":
				*ptr(in) = false
			default:
				return false
			}
			return true
		},
	}
}

var residencyField = field{
	key: "rs",
	encode: func(in *valuation.PropertyInputs) string {
		return string(in.Residency)
	},
	decode: func(in *valuation.PropertyInputs, value string) bool {
		r, err := policy.ParseResidency(value)
		if err != nil {
			return false
		}
		in.Residency = r
		return true
	},
}

// fields is the fixed short-key dictionary. Keys must never be reused for a
// different field or old links would decode incorrectly.
var fields = []field{
	floatField("pr", func(in *valuation.PropertyInputs) *float64 { return &in.Price }),
	residencyField,
	intField("pc", func(in *valuation.PropertyInputs) *int { return &in.PropertyCount }),
	intField("hp", func(in *valuation.PropertyInputs) *int { return &in.HoldingPeriodYears }),
	floatField("ap", func(in *valuation.PropertyInputs) *float64 { return &in.AnnualAppreciation }),
	floatField("lp", func(in *valuation.PropertyInputs) *float64 { return &in.LoanPercentage }),
	floatField("ir", func(in *valuation.PropertyInputs) *float64 { return &in.InterestRate }),
	intField("lt", func(in *valuation.PropertyInputs) *int { return &in.LoanTenureYears }),
	intField("li", func(in *valuation.PropertyInputs) *int { return &in.LockInYears }),
	floatField("mi", func(in *valuation.PropertyInputs) *float64 { return &in.MonthlyIncome }),
	floatField("ed", func(in *valuation.PropertyInputs) *float64 { return &in.ExistingMonthlyDebt }),
	floatField("mt", func(in *valuation.PropertyInputs) *float64 { return &in.MarginalTaxRate }),
	floatField("cf", func(in *valuation.PropertyInputs) *float64 { return &in.MonthlyCondoFee }),
	boolField("ro", func(in *valuation.PropertyInputs) *bool { return &in.RentOut }),
	floatField("er", func(in *valuation.PropertyInputs) *float64 { return &in.ExpectedMonthlyRental }),
	floatField("cr", func(in *valuation.PropertyInputs) *float64 { return &in.CurrentMarketRent }),
	boolField("rr", func(in *valuation.PropertyInputs) *bool { return &in.RentRoom }),
	floatField("ri", func(in *valuation.PropertyInputs) *float64 { return &in.RoomRentalIncome }),
	floatField("vw", func(in *valuation.PropertyInputs) *float64 { return &in.VacancyWeeks }),
	floatField("ca", func(in *valuation.PropertyInputs) *float64 { return &in.CashAvailable }),
	floatField("cpf", func(in *valuation.PropertyInputs) *float64 { return &in.CpfOaBalance }),
	boolField("cd", func(in *valuation.PropertyInputs) *bool { return &in.UseCpfForDownpayment }),
	boolField("cm", func(in *valuation.PropertyInputs) *bool { return &in.UseCpfForMonthly }),
	floatField("ac", func(in *valuation.PropertyInputs) *float64 { return &in.AgentCommission }),
	floatField("dr", func(in *valuation.PropertyInputs) *float64 { return &in.DiscountRate }),
	boolField("inr", func(in *valuation.PropertyInputs) *bool { return &in.IncludeRenovation }),
	floatField("rc", func(in *valuation.PropertyInputs) *float64 { return &in.RenovationCost }),
}

// Keys returns the short keys in dictionary order.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Encode writes every field of in under its short key.
func Encode(in valuation.PropertyInputs) url.Values {
	values := make(url.Values, len(fields))
	for _, f := range fields {
		values.Set(f.key, f.encode(&in))
	}
	return values
}

// EncodeQuery returns Encode as a query string with keys sorted.
func EncodeQuery(in valuation.PropertyInputs) string {
	return Encode(in).Encode()
}

// Decode reads fields from values on top of valuation.DefaultInputs. Unknown
// keys are ignored and missing or malformed values keep their default.
func Decode(values url.Values) valuation.PropertyInputs {
	in := valuation.DefaultInputs()
	for _, f := range fields {
		value := values.Get(f.key)
		if value == "" {
			continue
		}
		f.decode(&in, value)
	}
	return in
}

// DecodeQuery parses query (with or without a leading '?') and decodes it.
// Malformed pairs are skipped and reported in the error, but the returned
// inputs always carry every pair that did parse.
func DecodeQuery(query string) (valuation.PropertyInputs, error) {
	if len(query) > 0 && query[0] == '?' {
		query = query[1:]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return Decode(values), fmt.Errorf("skipped malformed share query pairs: %w", err)
	}
	return Decode(values), nil
}

package market

import (
	"github.com/guregu/null/v6"

	"github.com/jkcapital/autoanalyst/internal/models"
)

// fieldKind is the expected value type of a snapshot key.
type fieldKind int

const (
	kindNumber fieldKind = iota
	kindText
)

// fieldSpec is one candidate source for a report field. Candidate lists are
// evaluated in order and the first match wins.
type fieldSpec struct {
	Key  string
	Kind fieldKind
}

var (
	currentPriceFields    = []fieldSpec{{"currentPrice", kindNumber}, {"regularMarketPrice", kindNumber}}
	revenueFields         = []fieldSpec{{"totalRevenue", kindNumber}}
	epsGAAPFields         = []fieldSpec{{"trailingEps", kindNumber}}
	epsNonGAAPFields      = []fieldSpec{{"forwardEps", kindNumber}}
	peFields              = []fieldSpec{{"trailingPE", kindNumber}}
	forwardPEFields       = []fieldSpec{{"forwardPE", kindNumber}}
	fairPriceFields       = []fieldSpec{{"targetMeanPrice", kindNumber}}
	grossMarginFields     = []fieldSpec{{"grossMargins", kindNumber}}
	operatingMarginFields = []fieldSpec{{"operatingMargins", kindNumber}}
	betaFields            = []fieldSpec{{"beta", kindNumber}}
	marketCapFields       = []fieldSpec{{"marketCap", kindNumber}}
	nameFields            = []fieldSpec{{"longName", kindText}, {"shortName", kindText}}
	currencyFields        = []fieldSpec{{"currency", kindText}, {"financialCurrency", kindText}}
)

// Statement row labels tried in order; the provider has used both spaced and
// compact spellings over time.
var (
	revenueLabels         = []string{"Total Revenue", "TotalRevenue", "Revenue"}
	deferredRevenueLabels = []string{"Deferred Revenue", "DeferredRevenue", "Contract Liabilities", "Current Deferred Revenue"}
)

// resolveFloat returns the first candidate present in the snapshot. With
// truthy, zero values are treated as missing and the next candidate is tried.
func resolveFloat(snap models.Snapshot, specs []fieldSpec, truthy bool) null.Float {
	for _, spec := range specs {
		if spec.Kind != kindNumber || !snap.Has(spec.Key) {
			continue
		}
		v := snap.Float(spec.Key)
		if !v.Valid {
			continue
		}
		if truthy && v.Float64 == 0 {
			continue
		}
		return v
	}
	return null.Float{}
}

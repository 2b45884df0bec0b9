package valueobject

import "strings"

// ReasonCode identifies why a product failed an eligibility rule.
type ReasonCode string

const (
	ReasonPurposeNotSupported      ReasonCode = "PURPOSE_NOT_SUPPORTED"
	ReasonTenorTooShort            ReasonCode = "TENOR_TOO_SHORT"
	ReasonTenorTooLong             ReasonCode = "TENOR_TOO_LONG"
	ReasonLTVExceedsMax            ReasonCode = "LTV_EXCEEDS_MAX"
	ReasonLoanAmountTooLow         ReasonCode = "LOAN_AMOUNT_TOO_LOW"
	ReasonLoanAmountTooHigh        ReasonCode = "LOAN_AMOUNT_TOO_HIGH"
	ReasonIncomeTypeNotSupported   ReasonCode = "INCOME_TYPE_NOT_SUPPORTED"
	ReasonIncomeBelowMin           ReasonCode = "INCOME_BELOW_MIN"
	ReasonCollateralTypeNotAllowed ReasonCode = "COLLATERAL_TYPE_NOT_ALLOWED"
	ReasonGeoNotSupported          ReasonCode = "GEO_NOT_SUPPORTED"
	ReasonDSRExceedsMax            ReasonCode = "DSR_EXCEEDS_MAX"
)

var reasonDetails = map[ReasonCode]string{
	ReasonPurposeNotSupported:      "Product does not support your loan purpose",
	ReasonTenorTooShort:            "Requested term is below minimum allowed",
	ReasonTenorTooLong:             "Requested term exceeds maximum allowed",
	ReasonLTVExceedsMax:            "Loan-to-value ratio exceeds product limit",
	ReasonLoanAmountTooLow:         "Loan amount is below minimum",
	ReasonLoanAmountTooHigh:        "Loan amount exceeds maximum",
	ReasonIncomeTypeNotSupported:   "Income type not accepted for this product",
	ReasonIncomeBelowMin:           "Monthly income below minimum requirement",
	ReasonCollateralTypeNotAllowed: "Collateral type not accepted",
	ReasonGeoNotSupported:          "Property location not in bank's coverage area",
	ReasonDSRExceedsMax:            "Debt service ratio exceeds limit",
}

// Detail returns a human-readable description of the reason. Unknown codes
// are rendered in title case.
func (r ReasonCode) Detail() string {
	if d, ok := reasonDetails[r]; ok {
		return d
	}
	words := strings.Split(strings.ToLower(string(r)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// String returns the raw code.
func (r ReasonCode) String() string { return string(r) }

// ApprovalBucket is the coarse approval-likelihood class shown to borrowers.
type ApprovalBucket string

const (
	ApprovalHigh   ApprovalBucket = "HIGH"
	ApprovalMedium ApprovalBucket = "MEDIUM"
	ApprovalLow    ApprovalBucket = "LOW"
)

// ApprovalBucketFromScore maps a 0-100 approval score to its bucket.
func ApprovalBucketFromScore(score float64) ApprovalBucket {
	switch {
	case score >= 75:
		return ApprovalHigh
	case score >= 50:
		return ApprovalMedium
	default:
		return ApprovalLow
	}
}

package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanPurpose – immutable value object
// ---------------------------------------------------------------------------

// LoanPurpose is what the borrower intends to finance.
type LoanPurpose struct {
	value string
}

const (
	purposeNewPurchase     = "NEW_PURCHASE"
	purposeHomePurchase    = "HOME_PURCHASE"
	purposeConstruction    = "CONSTRUCTION"
	purposeRepair          = "REPAIR"
	purposeRefinance       = "REFINANCE"
	purposeDebtSwap        = "DEBT_SWAP"
	purposeBusinessSecured = "BUSINESS_SECURED"
)

var (
	LoanPurposeNewPurchase     = LoanPurpose{value: purposeNewPurchase}
	LoanPurposeHomePurchase    = LoanPurpose{value: purposeHomePurchase}
	LoanPurposeConstruction    = LoanPurpose{value: purposeConstruction}
	LoanPurposeRepair          = LoanPurpose{value: purposeRepair}
	LoanPurposeRefinance       = LoanPurpose{value: purposeRefinance}
	LoanPurposeDebtSwap        = LoanPurpose{value: purposeDebtSwap}
	LoanPurposeBusinessSecured = LoanPurpose{value: purposeBusinessSecured}
)

var validLoanPurposes = map[string]LoanPurpose{
	purposeNewPurchase:     LoanPurposeNewPurchase,
	purposeHomePurchase:    LoanPurposeHomePurchase,
	purposeConstruction:    LoanPurposeConstruction,
	purposeRepair:          LoanPurposeRepair,
	purposeRefinance:       LoanPurposeRefinance,
	purposeDebtSwap:        LoanPurposeDebtSwap,
	purposeBusinessSecured: LoanPurposeBusinessSecured,
}

// NewLoanPurpose creates a LoanPurpose from a raw string.
func NewLoanPurpose(s string) (LoanPurpose, error) {
	v, ok := validLoanPurposes[s]
	if !ok {
		return LoanPurpose{}, fmt.Errorf("invalid loan purpose: %q", s)
	}
	return v, nil
}

// String returns the string representation of the purpose.
func (p LoanPurpose) String() string { return p.value }

// IsZero returns true if the purpose has not been initialised.
func (p LoanPurpose) IsZero() bool { return p.value == "" }

// Matches reports whether a product offered for p serves an application with
// the requested purpose. NEW_PURCHASE and HOME_PURCHASE are interchangeable.
func (p LoanPurpose) Matches(requested LoanPurpose) bool {
	if p.value == requested.value {
		return true
	}
	return p.isPurchase() && requested.isPurchase()
}

func (p LoanPurpose) isPurchase() bool {
	return p.value == purposeNewPurchase || p.value == purposeHomePurchase
}

// ---------------------------------------------------------------------------
// IncomeType – immutable value object
// ---------------------------------------------------------------------------

// IncomeType classifies the borrower's primary income.
type IncomeType struct {
	value string
}

const (
	incomeSalary   = "SALARY"
	incomeBusiness = "BUSINESS"
	incomeRental   = "RENTAL"
	incomeOther    = "OTHER"
)

var (
	IncomeTypeSalary   = IncomeType{value: incomeSalary}
	IncomeTypeBusiness = IncomeType{value: incomeBusiness}
	IncomeTypeRental   = IncomeType{value: incomeRental}
	IncomeTypeOther    = IncomeType{value: incomeOther}
)

var validIncomeTypes = map[string]IncomeType{
	incomeSalary:   IncomeTypeSalary,
	incomeBusiness: IncomeTypeBusiness,
	incomeRental:   IncomeTypeRental,
	incomeOther:    IncomeTypeOther,
}

// NewIncomeType creates an IncomeType from a raw string.
func NewIncomeType(s string) (IncomeType, error) {
	v, ok := validIncomeTypes[s]
	if !ok {
		return IncomeType{}, fmt.Errorf("invalid income type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the income type.
func (t IncomeType) String() string { return t.value }

// IsZero returns true if the income type has not been initialised.
func (t IncomeType) IsZero() bool { return t.value == "" }

// ---------------------------------------------------------------------------
// CollateralType – immutable value object
// ---------------------------------------------------------------------------

// CollateralType classifies a pledged asset.
type CollateralType struct {
	value string
}

const (
	collateralHouse      = "HOUSE"
	collateralLand       = "LAND"
	collateralApartment  = "APT"
	collateralOffPlan    = "OFF_PLAN"
	collateralCommercial = "COMMERCIAL"
	collateralOther      = "OTHER"
)

var (
	CollateralTypeHouse      = CollateralType{value: collateralHouse}
	CollateralTypeLand       = CollateralType{value: collateralLand}
	CollateralTypeApartment  = CollateralType{value: collateralApartment}
	CollateralTypeOffPlan    = CollateralType{value: collateralOffPlan}
	CollateralTypeCommercial = CollateralType{value: collateralCommercial}
	CollateralTypeOther      = CollateralType{value: collateralOther}
)

var validCollateralTypes = map[string]CollateralType{
	collateralHouse:      CollateralTypeHouse,
	collateralLand:       CollateralTypeLand,
	collateralApartment:  CollateralTypeApartment,
	collateralOffPlan:    CollateralTypeOffPlan,
	collateralCommercial: CollateralTypeCommercial,
	collateralOther:      CollateralTypeOther,
}

// NewCollateralType creates a CollateralType from a raw string.
func NewCollateralType(s string) (CollateralType, error) {
	v, ok := validCollateralTypes[s]
	if !ok {
		return CollateralType{}, fmt.Errorf("invalid collateral type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the collateral type.
func (t CollateralType) String() string { return t.value }

// IsZero returns true if the collateral type has not been initialised.
func (t CollateralType) IsZero() bool { return t.value == "" }

// ---------------------------------------------------------------------------
// ProofStrength – immutable value object
// ---------------------------------------------------------------------------

// ProofStrength grades the documentation backing the declared income.
type ProofStrength struct {
	value string
}

const (
	proofStrong = "STRONG"
	proofMedium = "MEDIUM"
	proofWeak   = "WEAK"
)

var (
	ProofStrengthStrong = ProofStrength{value: proofStrong}
	ProofStrengthMedium = ProofStrength{value: proofMedium}
	ProofStrengthWeak   = ProofStrength{value: proofWeak}
)

var validProofStrengths = map[string]ProofStrength{
	proofStrong: ProofStrengthStrong,
	proofMedium: ProofStrengthMedium,
	proofWeak:   ProofStrengthWeak,
}

// NewProofStrength creates a ProofStrength from a raw string.
func NewProofStrength(s string) (ProofStrength, error) {
	v, ok := validProofStrengths[s]
	if !ok {
		return ProofStrength{}, fmt.Errorf("invalid proof strength: %q", s)
	}
	return v, nil
}

// String returns the string representation of the proof strength.
func (p ProofStrength) String() string { return p.value }

// IsZero returns true if the proof strength has not been initialised.
func (p ProofStrength) IsZero() bool { return p.value == "" }

// ApprovalBonus is the approval-score adjustment for this proof strength.
func (p ProofStrength) ApprovalBonus() float64 {
	switch p.value {
	case proofStrong:
		return 10
	case proofMedium:
		return 5
	case proofWeak:
		return -5
	default:
		return 0
	}
}

// ---------------------------------------------------------------------------
// LegalStatus – immutable value object
// ---------------------------------------------------------------------------

// LegalStatus describes the ownership paperwork of the collateral.
type LegalStatus struct {
	value string
}

const (
	legalClear    = "CLEAR"
	legalPending  = "PENDING"
	legalDisputed = "DISPUTED"
)

var (
	LegalStatusClear    = LegalStatus{value: legalClear}
	LegalStatusPending  = LegalStatus{value: legalPending}
	LegalStatusDisputed = LegalStatus{value: legalDisputed}
)

var validLegalStatuses = map[string]LegalStatus{
	legalClear:    LegalStatusClear,
	legalPending:  LegalStatusPending,
	legalDisputed: LegalStatusDisputed,
}

// NewLegalStatus creates a LegalStatus from a raw string.
func NewLegalStatus(s string) (LegalStatus, error) {
	v, ok := validLegalStatuses[s]
	if !ok {
		return LegalStatus{}, fmt.Errorf("invalid legal status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the legal status.
func (l LegalStatus) String() string { return l.value }

// IsZero returns true if the legal status has not been initialised.
func (l LegalStatus) IsZero() bool { return l.value == "" }

// Equal returns true when both statuses carry the same value.
func (l LegalStatus) Equal(other LegalStatus) bool { return l.value == other.value }

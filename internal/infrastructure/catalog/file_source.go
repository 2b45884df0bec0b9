// Package catalog loads the product catalog from a YAML file validated
// against an embedded JSON schema.
package catalog

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

//go:embed schema.json
var schemaJSON []byte

var catalogSchema = gojsonschema.NewBytesLoader(schemaJSON)

// ErrSchemaViolation wraps every schema validation failure.
var ErrSchemaViolation = errors.New("catalog does not match schema")

// FileSource implements port.CatalogSource over a YAML file.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source reading path on every Load.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Load reads and parses the catalog file.
func (s *FileSource) Load(ctx context.Context) (port.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return port.CatalogSnapshot{}, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return port.CatalogSnapshot{}, fmt.Errorf("read catalog: %w", err)
	}
	snapshot, report, err := Parse(s.path, raw)
	if err != nil {
		return port.CatalogSnapshot{}, err
	}
	for _, sk := range report.Skipped {
		s.logger.WarnContext(ctx, "catalog product skipped", "product_id", sk.ProductID, "error", sk.Err)
	}
	for _, iv := range report.Ignored {
		s.logger.WarnContext(ctx, "catalog value ignored",
			"product_id", iv.ProductID, "field", iv.Field, "value", iv.Value)
	}
	return snapshot, nil
}

// SkippedProduct is a catalog entry that failed validation.
type SkippedProduct struct {
	ProductID string
	Err       error
}

// IgnoredValue is an unrecognized eligibility list entry. The entry is
// dropped and the product kept.
type IgnoredValue struct {
	ProductID string
	Field     string
	Value     string
}

// Report lists what Parse left out of the snapshot.
type Report struct {
	Skipped []SkippedProduct
	Ignored []IgnoredValue
}

// Parse validates raw against the schema and converts it. Products that pass
// the schema but fail domain validation are skipped and reported.
func Parse(source string, raw []byte) (port.CatalogSnapshot, Report, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return port.CatalogSnapshot{}, Report{}, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if doc == nil {
		return port.CatalogSnapshot{}, Report{}, fmt.Errorf("%w: empty document", ErrSchemaViolation)
	}

	result, err := gojsonschema.Validate(catalogSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return port.CatalogSnapshot{}, Report{}, fmt.Errorf("validate catalog: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return port.CatalogSnapshot{}, Report{}, fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return port.CatalogSnapshot{}, Report{}, fmt.Errorf("normalize catalog: %w", err)
	}
	var file catalogFile
	if err := json.Unmarshal(normalized, &file); err != nil {
		return port.CatalogSnapshot{}, Report{}, fmt.Errorf("decode catalog: %w", err)
	}

	sum := sha256.Sum256(raw)
	snapshot := port.CatalogSnapshot{
		Source:    source,
		Checksum:  hex.EncodeToString(sum[:]),
		BankCount: len(file.Banks),
	}

	var report Report
	seen := make(map[string]bool)
	for _, b := range file.Banks {
		bank := b.toModel()
		for _, pf := range b.Products {
			if seen[pf.ID] {
				report.Skipped = append(report.Skipped, SkippedProduct{ProductID: pf.ID, Err: errors.New("duplicate product ID")})
				continue
			}
			p, ignored, err := pf.toModel(bank)
			if err == nil {
				err = p.Validate()
			}
			if err != nil {
				report.Skipped = append(report.Skipped, SkippedProduct{ProductID: pf.ID, Err: err})
				continue
			}
			report.Ignored = append(report.Ignored, ignored...)
			seen[pf.ID] = true
			snapshot.Products = append(snapshot.Products, p)
		}
	}
	snapshot.Skipped = len(report.Skipped)
	return snapshot, report, nil
}

// ---------------------------------------------------------------------------
// file format
// ---------------------------------------------------------------------------

type catalogFile struct {
	Version int        `json:"version"`
	Banks   []bankFile `json:"banks"`
}

type bankFile struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	ShortName           string        `json:"short_name"`
	CoverageProvinces   []string      `json:"coverage_provinces"`
	DataConfidenceScore int           `json:"data_confidence_score"`
	ProcessingSLA       *slaFile      `json:"processing_sla"`
	Products            []productFile `json:"products"`
}

type slaFile struct {
	PreApprovalDays   int `json:"pre_approval_days"`
	AppraisalDays     int `json:"appraisal_days"`
	FinalApprovalDays int `json:"final_approval_days"`
	DisbursementDays  int `json:"disbursement_days"`
}

type productFile struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Purpose              string          `json:"purpose"`
	MinLoanAmount        decimal.Decimal `json:"min_loan_amount"`
	MaxLoanAmount        decimal.Decimal `json:"max_loan_amount"`
	MaxLTVPct            decimal.Decimal `json:"max_ltv_pct"`
	MinTermMonths        int             `json:"min_term_months"`
	MaxTermMonths        int             `json:"max_term_months"`
	Eligibility          eligibilityFile `json:"eligibility"`
	PromoOptions         []promoFile     `json:"promo_options"`
	Floating             floatingFile    `json:"floating"`
	Fees                 feesFile        `json:"fees"`
	RepaymentMethod      string          `json:"repayment_method"`
	GracePrincipalMonths int             `json:"grace_principal_months"`
	SLADaysEstimate      int             `json:"sla_days_estimate"`
	ReferenceURL         string          `json:"reference_url"`
	RateAssumptions      string          `json:"rate_assumptions"`
	Active               *bool           `json:"active"`
}

type eligibilityFile struct {
	IncomeTypes     []string        `json:"income_types"`
	MinIncome       decimal.Decimal `json:"min_income"`
	CollateralTypes []string        `json:"collateral_types"`
	MaxDSR          *float64        `json:"max_dsr"`
	MaxLTV          *float64        `json:"max_ltv"`
}

type promoFile struct {
	FixedRatePct decimal.Decimal `json:"fixed_rate_pct"`
	FixedMonths  int             `json:"fixed_months"`
}

type floatingFile struct {
	MarginPct          decimal.Decimal `json:"margin_pct"`
	ReferenceRatePct   decimal.Decimal `json:"reference_rate_pct"`
	ReferenceRateName  string          `json:"reference_rate_name"`
	ReferenceSourceURL string          `json:"reference_source_url"`
	HasCapsFloors      bool            `json:"has_caps_floors"`
}

type feesFile struct {
	OriginationPct        decimal.Decimal `json:"origination_pct"`
	OriginationMin        decimal.Decimal `json:"origination_min"`
	OriginationMax        decimal.Decimal `json:"origination_max"`
	AppraisalFee          decimal.Decimal `json:"appraisal_fee"`
	DisbursementFee       decimal.Decimal `json:"disbursement_fee"`
	DisbursementPct       decimal.Decimal `json:"disbursement_pct"`
	MonthlyMaintenanceFee decimal.Decimal `json:"monthly_maintenance_fee"`
	InsuranceAnnualPct    decimal.Decimal `json:"insurance_annual_pct"`
	InsuranceAnnualAmount decimal.Decimal `json:"insurance_annual_amount"`
	InsuranceBasis        string          `json:"insurance_basis"`
	PrepaymentTiers       []tierFile      `json:"prepayment_tiers"`
}

type tierFile struct {
	MonthsFrom int             `json:"months_from"`
	MonthsTo   *int            `json:"months_to"`
	FeePct     decimal.Decimal `json:"fee_pct"`
}

func (b bankFile) toModel() model.Bank {
	bank := model.Bank{
		ID:                  b.ID,
		Name:                b.Name,
		ShortName:           b.ShortName,
		CoverageProvinces:   b.CoverageProvinces,
		DataConfidenceScore: b.DataConfidenceScore,
	}
	if b.ProcessingSLA != nil {
		bank.SLA = &model.ProcessingSLA{
			PreApprovalDays:   b.ProcessingSLA.PreApprovalDays,
			AppraisalDays:     b.ProcessingSLA.AppraisalDays,
			FinalApprovalDays: b.ProcessingSLA.FinalApprovalDays,
			DisbursementDays:  b.ProcessingSLA.DisbursementDays,
		}
	}
	return bank
}

func (p productFile) toModel(bank model.Bank) (model.ProductCandidate, []IgnoredValue, error) {
	purpose, err := valueobject.NewLoanPurpose(p.Purpose)
	if err != nil {
		return model.ProductCandidate{}, nil, err
	}
	method, err := valueobject.NewRepaymentMethod(p.RepaymentMethod)
	if err != nil {
		return model.ProductCandidate{}, nil, err
	}
	basis, err := valueobject.NewInsuranceBasis(p.Fees.InsuranceBasis)
	if err != nil {
		return model.ProductCandidate{}, nil, err
	}

	rules := model.EligibilityRules{
		MinIncome: p.Eligibility.MinIncome,
		MaxDSR:    p.Eligibility.MaxDSR,
		MaxLTV:    p.Eligibility.MaxLTV,
	}
	var ignored []IgnoredValue
	for _, raw := range p.Eligibility.IncomeTypes {
		t, err := valueobject.NewIncomeType(raw)
		if err != nil {
			ignored = append(ignored, IgnoredValue{ProductID: p.ID, Field: "eligibility.income_types", Value: raw})
			continue
		}
		rules.IncomeTypes = append(rules.IncomeTypes, t)
	}
	for _, raw := range p.Eligibility.CollateralTypes {
		t, err := valueobject.NewCollateralType(raw)
		if err != nil {
			ignored = append(ignored, IgnoredValue{ProductID: p.ID, Field: "eligibility.collateral_types", Value: raw})
			continue
		}
		rules.CollateralTypes = append(rules.CollateralTypes, t)
	}

	promos := make([]model.PromoOption, 0, len(p.PromoOptions))
	for _, o := range p.PromoOptions {
		promos = append(promos, model.PromoOption{FixedRatePct: o.FixedRatePct, FixedMonths: o.FixedMonths})
	}

	tiers := make(model.PrepaymentTiers, 0, len(p.Fees.PrepaymentTiers))
	for _, t := range p.Fees.PrepaymentTiers {
		tier := model.PrepaymentTier{MonthsFrom: t.MonthsFrom, FeePct: t.FeePct}
		if t.MonthsTo != nil {
			tier.MonthsTo = *t.MonthsTo
		}
		tiers = append(tiers, tier)
	}

	active := true
	if p.Active != nil {
		active = *p.Active
	}

	return model.ProductCandidate{
		ID:            p.ID,
		Bank:          bank,
		Name:          p.Name,
		Purpose:       purpose,
		MinLoanAmount: p.MinLoanAmount,
		MaxLoanAmount: p.MaxLoanAmount,
		MaxLTVPct:     p.MaxLTVPct,
		MinTermMonths: p.MinTermMonths,
		MaxTermMonths: p.MaxTermMonths,
		Eligibility:   rules,
		PromoOptions:  promos,
		Floating: model.FloatingTerms{
			MarginPct:          p.Floating.MarginPct,
			ReferenceRatePct:   p.Floating.ReferenceRatePct,
			ReferenceRateName:  p.Floating.ReferenceRateName,
			ReferenceSourceURL: p.Floating.ReferenceSourceURL,
			HasCapsFloors:      p.Floating.HasCapsFloors,
		},
		Fees: model.FeeStructure{
			OriginationPct:        p.Fees.OriginationPct,
			OriginationMin:        p.Fees.OriginationMin,
			OriginationMax:        p.Fees.OriginationMax,
			AppraisalFee:          p.Fees.AppraisalFee,
			DisbursementFee:       p.Fees.DisbursementFee,
			DisbursementPct:       p.Fees.DisbursementPct,
			MonthlyMaintenanceFee: p.Fees.MonthlyMaintenanceFee,
			InsuranceAnnualPct:    p.Fees.InsuranceAnnualPct,
			InsuranceAnnualAmount: p.Fees.InsuranceAnnualAmount,
			InsuranceBasis:        basis,
			PrepaymentTiers:       tiers,
		},
		RepaymentMethod:      method,
		GracePrincipalMonths: p.GracePrincipalMonths,
		SLADaysEstimate:      p.SLADaysEstimate,
		ReferenceURL:         p.ReferenceURL,
		RateAssumptions:      p.RateAssumptions,
		Active:               active,
	}, ignored, nil
}

package service

import (
	"fmt"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

const (
	strongFactor = 70.0
	weakFactor   = 50.0

	maxProductNextSteps = 4
)

// stuckReasonCoaching maps the borrower's self-reported blockers to advice.
var stuckReasonCoaching = map[string]string{
	"CIC_ISSUE":              "Pull latest CIC report and resolve any overdue accounts.",
	"INCOME_UNPROVEN":        "Upload bank statements or tax returns to prove income.",
	"COLLATERAL_LEGAL":       "Provide legal documents showing collateral ownership is clear.",
	"DOCS_INCOMPLETE":        "Complete required documents such as ID, proof of income, and collateral papers.",
	"LTV_TOO_HIGH":           "Consider lowering the requested amount or increasing down payment to reduce LTV.",
	"NEED_FAST_DISBURSEMENT": "Prepare full document set in advance to shorten processing time.",
}

// Explain turns the factor scores into "why it fits" and "risks" sentences.
func Explain(
	profile model.ApplicationProfile,
	product model.ProductCandidate,
	scores model.ScoreBreakdown,
	base *model.LoanCostSummary,
) (whyFit, risks []string) {
	switch {
	case scores.Cost >= strongFactor:
		if base != nil {
			whyFit = append(whyFit, fmt.Sprintf("Competitive cost with APR of %.2f%%", base.APR*100))
		} else {
			whyFit = append(whyFit, "Competitive interest rates")
		}
	case scores.Cost < weakFactor:
		risks = append(risks, "Higher total cost compared to other options")
	}

	if scores.Stability >= strongFactor {
		whyFit = append(whyFit, fmt.Sprintf("%d-month fixed rate provides payment stability", product.RateStructure().FixedMonths))
	}
	if scores.Stability < weakFactor {
		risks = append(risks, "Payment may increase significantly after fixed period ends")
	}

	switch {
	case scores.Approval >= strongFactor:
		whyFit = append(whyFit, "Strong match with eligibility requirements")
	case scores.Approval < weakFactor:
		risks = append(risks, "Profile may require additional documentation for approval")
	}

	if profile.NeedDisbursementBy != nil {
		switch {
		case scores.Speed >= strongFactor:
			whyFit = append(whyFit, "Likely to meet your disbursement timeline")
		case scores.Speed < weakFactor:
			risks = append(risks, "May not meet your requested disbursement date")
		}
	}

	if profile.ExpectedPrepaymentMonth > 0 {
		switch {
		case scores.Penalties >= strongFactor:
			whyFit = append(whyFit, "Low prepayment fees for your planned payoff timeline")
		case scores.Penalties < weakFactor:
			risks = append(risks, "Significant prepayment fee if you pay off early as planned")
		}
	}

	if len(whyFit) == 0 {
		whyFit = append(whyFit, "Meets basic eligibility requirements")
	}
	return whyFit, risks
}

// ProductNextSteps suggests up to four actions for pursuing one product.
func ProductNextSteps(profile model.ApplicationProfile, product model.ProductCandidate) []string {
	var steps []string
	if profile.ProofStrength == valueobject.ProofStrengthWeak {
		steps = append(steps, "Strengthen income documentation with bank statements or tax returns")
	}
	if profile.CreditFlags.HasLatePayments {
		steps = append(steps, "Review and resolve any overdue accounts on credit history")
	}
	if profile.LegalStatus.Equal(valueobject.LegalStatusPending) {
		steps = append(steps, "Complete property documentation (red book/ownership papers)")
	}

	bank := product.Bank.ShortName
	if bank == "" {
		bank = "the bank"
	}
	steps = append(steps, fmt.Sprintf("Contact %s to confirm current rates and terms", bank))

	if len(steps) > maxProductNextSteps {
		steps = steps[:maxProductNextSteps]
	}
	return steps
}

// OverallNextSteps coaches the borrower based on their stuck reasons and
// whether anything was recommended. Duplicates are removed, order kept.
func OverallNextSteps(profile model.ApplicationProfile, hasRecommendations bool) []string {
	var steps []string
	for _, reason := range profile.StuckReasons {
		if advice, ok := stuckReasonCoaching[reason]; ok {
			steps = append(steps, advice)
		}
	}
	if hasRecommendations {
		steps = append(steps,
			"Compare the top recommended products using the scenario comparison feature",
			"Schedule a consultation with your preferred bank to discuss application",
		)
	}
	if len(steps) == 0 {
		steps = append(steps, "Prepare income proof and collateral documents to speed up processing")
	}
	return dedupe(steps)
}

// Assumptions lists what the cost figures take for granted.
func Assumptions(product model.ProductCandidate, rates model.RateStructure) []string {
	assumptions := []string{
		fmt.Sprintf("Reference rate assumed at %s%% for floating period", rates.ReferenceRatePct.String()),
		"Monthly compounding used for interest calculations",
		"All fees included at stated rates; actual fees may vary",
	}
	if product.RateAssumptions != "" {
		assumptions = append(assumptions, product.RateAssumptions)
	}
	return assumptions
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// earlyExitHorizonMonths is the comparison window for borrowers who plan to
// exit early but did not say when.
const earlyExitHorizonMonths = 36

// StressInput describes one loan to stress test.
type StressInput struct {
	Principal            decimal.Decimal
	TenorMonths          int
	Rates                model.RateStructure
	Fees                 model.FeeStructure
	Method               valueobject.RepaymentMethod
	GracePrincipalMonths int
	Prepayment           *model.PrepaymentInfo
	PropertyValue        decimal.Decimal
	// HorizonMonths bounds the cost sums; zero means the whole schedule.
	HorizonMonths int
}

// ScheduleParams returns the scheduler input for level.
func (in StressInput) ScheduleParams(level valueobject.StressLevel) model.ScheduleParams {
	fees := in.Fees
	return model.ScheduleParams{
		Principal:            in.Principal,
		TenorMonths:          in.TenorMonths,
		Rates:                in.Rates,
		Method:               in.Method,
		GracePrincipalMonths: in.GracePrincipalMonths,
		Fees:                 &fees,
		Prepayment:           in.Prepayment,
		PropertyValue:        in.PropertyValue,
		Stress:               level,
	}
}

// StressRunner runs the amortization scheduler under every stress level and
// summarises the cost of each.
type StressRunner struct{}

// NewStressRunner returns a new runner.
func NewStressRunner() *StressRunner {
	return &StressRunner{}
}

// Run returns one summary per stress level.
func (r *StressRunner) Run(in StressInput) model.ScenarioSet {
	var set model.ScenarioSet
	for _, level := range valueobject.StressLevels {
		set[level] = r.Summarize(in, level)
	}
	return set
}

// Summarize builds the schedule for level and aggregates it over the horizon.
func (r *StressRunner) Summarize(in StressInput, level valueobject.StressLevel) model.LoanCostSummary {
	sched := model.GenerateAmortizationSchedule(in.ScheduleParams(level))
	if sched.Len() == 0 {
		return model.LoanCostSummary{}
	}

	window := sched.Head(sched.Len())
	if in.HorizonMonths > 0 {
		window = sched.Head(in.HorizonMonths)
	}

	var interest, fees, insurance, payments decimal.Decimal
	for _, p := range window {
		interest = interest.Add(p.Interest)
		fees = fees.Add(p.Fees)
		insurance = insurance.Add(p.Insurance)
		payments = payments.Add(p.Payment)
	}

	prepaymentFee := decimal.Zero
	if in.Prepayment != nil {
		for _, p := range sched.Payments {
			if p.Month == in.Prepayment.Month {
				prepaymentFee = in.Fees.PrepaymentFee(p.Prepayment, p.Month)
				break
			}
		}
	}

	var postPromo []model.MonthlyPayment
	for _, p := range sched.Payments {
		if p.Month > in.Rates.FixedMonths {
			postPromo = append(postPromo, p)
		}
	}

	totalFees := sched.UpfrontFees.Add(fees)
	return model.LoanCostSummary{
		APR:                         ScheduleAPR(in.Principal, sched),
		MonthlyPaymentFirst12M:      averagePayment(sched.Head(min(12, len(window)))),
		MonthlyPaymentPostPromo:     averagePayment(postPromo),
		TotalInterest:               interest,
		TotalFees:                   totalFees,
		TotalInsurance:              insurance,
		TotalCostExcludingPrincipal: interest.Add(totalFees).Add(insurance),
		TotalOutOfPocket:            sched.UpfrontFees.Add(payments).Add(fees).Add(insurance),
		PrepaymentFee:               prepaymentFee,
	}
}

// ComparisonHorizon picks the number of months over which costs are compared:
// the planned hold period, else 36 months for early exit, else the tenor.
func ComparisonHorizon(profile model.ApplicationProfile, tenorMonths int) int {
	switch {
	case profile.PlannedHoldMonths > 0:
		return profile.PlannedHoldMonths
	case profile.Strategy().Equal(valueobject.RepaymentStrategyEarlyExit):
		return earlyExitHorizonMonths
	default:
		return tenorMonths
	}
}

func averagePayment(ps []model.MonthlyPayment) decimal.Decimal {
	if len(ps) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range ps {
		sum = sum.Add(p.Payment)
	}
	return sum.Div(decimal.NewFromInt(int64(len(ps)))).Round(2)
}

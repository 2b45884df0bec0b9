package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// MonthlyPayment is one month of an amortization schedule. Payment equals
// Interest + Principal; Principal includes any Prepayment made that month.
type MonthlyPayment struct {
	Month            int
	DueDate          time.Time
	Interest         decimal.Decimal
	Principal        decimal.Decimal
	Prepayment       decimal.Decimal
	Payment          decimal.Decimal
	RemainingBalance decimal.Decimal
	Fees             decimal.Decimal
	Insurance        decimal.Decimal
	RateApplied      decimal.Decimal
	IsGracePeriod    bool
}

// PrepaymentInfo describes an early repayment. A zero Amount pays the loan
// off in full; a positive Amount smaller than the outstanding balance is a
// partial prepayment and the schedule continues afterwards.
type PrepaymentInfo struct {
	Month  int
	Amount decimal.Decimal
}

// AmortizationSchedule is the full month-by-month schedule plus its totals.
// UpfrontFees are charged at disbursement and are not part of TotalFees.
type AmortizationSchedule struct {
	Payments       []MonthlyPayment
	UpfrontFees    decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalPrincipal decimal.Decimal
	TotalPayments  decimal.Decimal
	TotalFees      decimal.Decimal
	TotalInsurance decimal.Decimal
}

// ScheduleParams are the inputs of GenerateAmortizationSchedule. Fees and
// Prepayment are optional.
type ScheduleParams struct {
	Principal            decimal.Decimal
	TenorMonths          int
	Rates                RateStructure
	Method               valueobject.RepaymentMethod
	GracePrincipalMonths int
	GraceInterestMonths  int
	Fees                 *FeeStructure
	Prepayment           *PrepaymentInfo
	PropertyValue        decimal.Decimal
	Stress               valueobject.StressLevel
	StartDate            time.Time
}

// AnnuityPayment returns the level payment that amortises balance over months
// at the given nominal annual rate (decimal fraction):
//
//	payment = B * r * (1+r)^n / ((1+r)^n - 1),  r = annualRate / 12
//
// A zero rate splits the balance evenly.
func AnnuityPayment(balance, annualRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return balance
	}
	if annualRate.IsZero() {
		return balance.Div(decimal.NewFromInt(int64(months))).Round(2)
	}

	// float64 for the power, decimal for the money.
	r := annualRate.InexactFloat64() / 12.0
	factor := math.Pow(1+r, float64(months))
	payment := balance.InexactFloat64() * r * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// GenerateAmortizationSchedule simulates the loan month by month. The
// payment is re-levelled every month over the remaining balance and months,
// so a rate change at the end of the fixed period carries into the next
// payment. Equal-principal loans fix the principal portion, rounded up to the
// cent, when amortization starts and again after a partial prepayment, so the
// payment never rises at a constant rate. The last month absorbs rounding so
// the balance ends at zero.
func GenerateAmortizationSchedule(p ScheduleParams) AmortizationSchedule {
	if p.TenorMonths <= 0 || !p.Principal.IsPositive() {
		return AmortizationSchedule{}
	}

	var fees FeeStructure
	if p.Fees != nil {
		fees = *p.Fees
	}

	sched := AmortizationSchedule{
		Payments:    make([]MonthlyPayment, 0, p.TenorMonths),
		UpfrontFees: fees.UpfrontFees(p.Principal),
	}

	remaining := p.Principal
	currentRate := p.Rates.RateForMonth(1, p.Stress)
	var portion decimal.Decimal

	for month := 1; month <= p.TenorMonths && remaining.IsPositive(); month++ {
		var dueDate time.Time
		if !p.StartDate.IsZero() {
			dueDate = p.StartDate.AddDate(0, month, 0)
		}

		prepayThisMonth := p.Prepayment != nil && p.Prepayment.Month == month
		if prepayThisMonth && (!p.Prepayment.Amount.IsPositive() || p.Prepayment.Amount.GreaterThanOrEqual(remaining)) {
			sched.add(MonthlyPayment{
				Month:            month,
				DueDate:          dueDate,
				Interest:         decimal.Zero,
				Principal:        remaining,
				Prepayment:       remaining,
				Payment:          remaining,
				RemainingBalance: decimal.Zero,
				Fees:             fees.PrepaymentFee(remaining, month),
				Insurance:        decimal.Zero,
				RateApplied:      currentRate,
			})
			break
		}

		currentRate = p.Rates.RateForMonth(month, p.Stress)
		startBalance := remaining

		interest := decimal.Zero
		if month > p.GraceInterestMonths {
			interest = remaining.Mul(currentRate).Div(twelve).Round(2)
		}

		inPrincipalGrace := month <= p.GracePrincipalMonths
		principalPart := decimal.Zero
		if !inPrincipalGrace {
			monthsLeft := p.TenorMonths - month + 1
			switch {
			case monthsLeft == 1:
				principalPart = remaining
			case p.Method.IsEqualPrincipal():
				if portion.IsZero() {
					portion = equalPortion(remaining, monthsLeft)
				}
				principalPart = portion
			default:
				principalPart = AnnuityPayment(remaining, currentRate, monthsLeft).Sub(interest)
			}
			principalPart = decimal.Max(decimal.Zero, decimal.Min(principalPart, remaining))
		}
		remaining = remaining.Sub(principalPart)

		monthFees := fees.MonthlyMaintenanceFee
		prepaid := decimal.Zero
		if prepayThisMonth && remaining.IsPositive() {
			prepaid = decimal.Min(p.Prepayment.Amount, remaining)
			monthFees = monthFees.Add(fees.PrepaymentFee(prepaid, month))
			remaining = remaining.Sub(prepaid)
			if monthsAfter := p.TenorMonths - month; p.Method.IsEqualPrincipal() && monthsAfter > 0 && !inPrincipalGrace {
				portion = equalPortion(remaining, monthsAfter)
			}
		}

		principalPart = principalPart.Add(prepaid)
		sched.add(MonthlyPayment{
			Month:            month,
			DueDate:          dueDate,
			Interest:         interest,
			Principal:        principalPart,
			Prepayment:       prepaid,
			Payment:          interest.Add(principalPart),
			RemainingBalance: remaining,
			Fees:             monthFees,
			Insurance:        fees.MonthlyInsurance(startBalance, p.PropertyValue),
			RateApplied:      currentRate,
			IsGracePeriod:    inPrincipalGrace,
		})
	}

	return sched
}

// equalPortion rounds up so the final month is never larger than the others.
func equalPortion(balance decimal.Decimal, months int) decimal.Decimal {
	return balance.Div(decimal.NewFromInt(int64(months))).RoundCeil(2)
}

func (s *AmortizationSchedule) add(m MonthlyPayment) {
	s.Payments = append(s.Payments, m)
	s.TotalInterest = s.TotalInterest.Add(m.Interest)
	s.TotalPrincipal = s.TotalPrincipal.Add(m.Principal)
	s.TotalPayments = s.TotalPayments.Add(m.Payment)
	s.TotalFees = s.TotalFees.Add(m.Fees)
	s.TotalInsurance = s.TotalInsurance.Add(m.Insurance)
}

// Len returns the number of months in the schedule.
func (s AmortizationSchedule) Len() int { return len(s.Payments) }

// Head returns at most the first n months.
func (s AmortizationSchedule) Head(n int) []MonthlyPayment {
	if n > len(s.Payments) {
		n = len(s.Payments)
	}
	if n < 0 {
		n = 0
	}
	return s.Payments[:n]
}

package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
)

// Newton-Raphson parameters for the monthly IRR.
const (
	irrInitialGuess    = 0.01
	irrMaxIterations   = 100
	irrTolerance       = 1e-10
	irrMinRate         = -0.5
	irrMaxRate         = 1.0
	irrDerivativeFloor = 1e-20
)

// MonthlyIRR returns the monthly internal rate of return of cashflows, where
// index 0 is the net amount received at disbursement and later indices are
// the (negative) monthly outflows. Fewer than two cashflows yield 0. When the
// iteration budget runs out the last clamped estimate is returned.
func MonthlyIRR(cashflows []float64) float64 {
	if len(cashflows) < 2 {
		return 0
	}

	rate := irrInitialGuess
	for i := 0; i < irrMaxIterations; i++ {
		var npv, dnpv float64
		for t, cf := range cashflows {
			discount := math.Pow(1+rate, float64(t))
			npv += cf / discount
			if t > 0 {
				dnpv -= float64(t) * cf / (discount * (1 + rate))
			}
		}
		if math.Abs(dnpv) < irrDerivativeFloor {
			break
		}

		next := rate - npv/dnpv
		next = math.Max(irrMinRate, math.Min(next, irrMaxRate))
		if math.Abs(next-rate) < irrTolerance {
			return next
		}
		rate = next
	}
	return rate
}

// AnnualizeMonthlyRate compounds a monthly rate into an effective annual one.
func AnnualizeMonthlyRate(monthly float64) float64 {
	return math.Pow(1+monthly, 12) - 1
}

// ScheduleAPR derives the APR of a schedule from the borrower's cashflows:
// principal net of upfront fees in, then payment + fees + insurance out every
// month. Any prepayment fee is already in the fees of its month.
func ScheduleAPR(principal decimal.Decimal, sched model.AmortizationSchedule) float64 {
	if sched.Len() == 0 {
		return 0
	}
	cashflows := make([]float64, 0, sched.Len()+1)
	cashflows = append(cashflows, principal.Sub(sched.UpfrontFees).InexactFloat64())
	for _, p := range sched.Payments {
		out := p.Payment.Add(p.Fees).Add(p.Insurance)
		cashflows = append(cashflows, -out.InexactFloat64())
	}
	return AnnualizeMonthlyRate(MonthlyIRR(cashflows))
}

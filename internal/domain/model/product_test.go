package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
)

func TestProductCandidate_ProcessingDays(t *testing.T) {
	tests := []struct {
		name     string
		sla      *model.ProcessingSLA
		estimate int
		want     int
	}{
		{name: "bank SLA wins", sla: &model.ProcessingSLA{PreApprovalDays: 3, AppraisalDays: 5, FinalApprovalDays: 3, DisbursementDays: 2}, estimate: 30, want: 13},
		{name: "all-zero SLA falls back to estimate", sla: &model.ProcessingSLA{}, estimate: 21, want: 21},
		{name: "no SLA uses estimate", estimate: 14, want: 14},
		{name: "nothing known", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.ProductCandidate{Bank: model.Bank{SLA: tt.sla}, SLADaysEstimate: tt.estimate}
			assert.Equal(t, tt.want, p.ProcessingDays())
		})
	}
}

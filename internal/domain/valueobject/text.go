package valueobject

// Text encoding lets value objects round-trip through JSON columns and
// catalog files as their canonical string form. An empty string decodes to
// the zero value.

func (p LoanPurpose) MarshalText() ([]byte, error) { return []byte(p.value), nil }

func (p *LoanPurpose) UnmarshalText(b []byte) error {
	return unmarshalOptional(b, p, NewLoanPurpose)
}

func (t IncomeType) MarshalText() ([]byte, error) { return []byte(t.value), nil }

func (t *IncomeType) UnmarshalText(b []byte) error {
	return unmarshalOptional(b, t, NewIncomeType)
}

func (t CollateralType) MarshalText() ([]byte, error) { return []byte(t.value), nil }

func (t *CollateralType) UnmarshalText(b []byte) error {
	return unmarshalOptional(b, t, NewCollateralType)
}

func (p ProofStrength) MarshalText() ([]byte, error) { return []byte(p.value), nil }

func (p *ProofStrength) UnmarshalText(b []byte) error {
	return unmarshalOptional(b, p, NewProofStrength)
}

func (l LegalStatus) MarshalText() ([]byte, error) { return []byte(l.value), nil }

func (l *LegalStatus) UnmarshalText(b []byte) error {
	return unmarshalOptional(b, l, NewLegalStatus)
}

func (s RepaymentStrategy) MarshalText() ([]byte, error) { return []byte(s.value), nil }

func (s *RepaymentStrategy) UnmarshalText(b []byte) error {
	return unmarshalOptional(b, s, NewRepaymentStrategy)
}

func (m RepaymentMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *RepaymentMethod) UnmarshalText(b []byte) error {
	v, err := NewRepaymentMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (b InsuranceBasis) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *InsuranceBasis) UnmarshalText(text []byte) error {
	v, err := NewInsuranceBasis(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func unmarshalOptional[T any](b []byte, dst *T, parse func(string) (T, error)) error {
	if len(b) == 0 {
		var zero T
		*dst = zero
		return nil
	}
	v, err := parse(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

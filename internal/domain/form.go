package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

// Form is the subsidiary-specific onboarding payload. Exactly one concrete
// type exists per Subsidiary; DecodeForm picks it.
type Form interface {
	Subsidiary() Subsidiary
}

type PersonalDetails struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	DateOfBirth  string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required"`
}

type BankDetails struct {
	AccountHolder string `json:"account_holder" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
}

type IndiaForm struct {
	Personal PersonalDetails `json:"personal"`
	Bank     BankDetails     `json:"bank"`
	PAN      string          `json:"pan" validate:"required,len=10"`
	Aadhaar  string          `json:"aadhaar" validate:"required,len=12,numeric"`
	IFSC     string          `json:"ifsc" validate:"required,len=11"`
	UAN      string          `json:"uan,omitempty"`
}

func (IndiaForm) Subsidiary() Subsidiary { return SubsidiaryIndia }

type CanadaForm struct {
	Personal      PersonalDetails `json:"personal"`
	Bank          BankDetails     `json:"bank"`
	SIN           string          `json:"sin" validate:"required,len=9,numeric"`
	Province      string          `json:"province" validate:"required,len=2"`
	TransitNumber string          `json:"transit_number" validate:"required"`
}

func (CanadaForm) Subsidiary() Subsidiary { return SubsidiaryCanada }

type USForm struct {
	Personal      PersonalDetails `json:"personal"`
	Bank          BankDetails     `json:"bank"`
	SSN           string          `json:"ssn" validate:"required,len=9,numeric"`
	State         string          `json:"state" validate:"required,len=2"`
	RoutingNumber string          `json:"routing_number" validate:"required,len=9,numeric"`
	FilingStatus  string          `json:"filing_status" validate:"required,oneof=single married_joint married_separate head_of_household"`
}

func (USForm) Subsidiary() Subsidiary { return SubsidiaryUS }

var ErrUnknownSubsidiary = errors.New("unknown subsidiary")

// DecodeForm decodes raw into the form type of the given subsidiary. Unknown
// fields are rejected so a payload for one subsidiary cannot be stored under
// another.
func DecodeForm(sub Subsidiary, raw []byte) (Form, error) {
	var target Form
	switch sub {
	case SubsidiaryIndia:
		target = &IndiaForm{}
	case SubsidiaryCanada:
		target = &CanadaForm{}
	case SubsidiaryUS:
		target = &USForm{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubsidiary, sub)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("decode %s form: %w", sub, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s form: trailing data", sub)
	}
	return target, nil
}

// FormComplete reports whether every required field of f is filled in.
func FormComplete(v *validator.Validate, f Form) bool {
	if f == nil {
		return false
	}
	return v.Struct(f) == nil
}

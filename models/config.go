package models

import "time"

// Config is the single settings document driving the savings cycle.
type Config struct {
	MonthlyPaymentAmount        float64 `json:"monthlyPaymentAmount" bson:"monthlyPaymentAmount" validate:"required,gt=0"`
	PenaltyMultiplier           float64 `json:"penaltyMultiplier" bson:"penaltyMultiplier" validate:"required,gt=0"`
	WithdrawalEligibilityMonths int     `json:"withdrawalEligibilityMonths" bson:"withdrawalEligibilityMonths" validate:"required,min=1"`
	WithdrawalProcessingFee     float64 `json:"withdrawalProcessingFee" bson:"withdrawalProcessingFee" validate:"min=0"`
	PaymentReminderDays         int     `json:"paymentReminderDays" bson:"paymentReminderDays" validate:"min=0"`

	// Account members pay into.
	CompanyName          string `json:"companyName" bson:"companyName"`
	CompanyBankName      string `json:"companyBankName" bson:"companyBankName"`
	CompanyAccountName   string `json:"companyAccountName" bson:"companyAccountName"`
	CompanyAccountNumber string `json:"companyAccountNumber" bson:"companyAccountNumber"`

	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// DefaultConfig seeds the config collection on first use.
func DefaultConfig() *Config {
	return &Config{
		MonthlyPaymentAmount:        12000,
		PenaltyMultiplier:           2,
		WithdrawalEligibilityMonths: 6,
		WithdrawalProcessingFee:     0,
		PaymentReminderDays:         3,
		CompanyName:                 "ThriftCircle",
		UpdatedAt:                   time.Now(),
	}
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionRejected  TransactionStatus = "rejected"
)

// CanTransitionTo reports whether a status change is legal. Completed and
// rejected are terminal.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TransactionPending:
		return next == TransactionCompleted || next == TransactionRejected
	default:
		return false
	}
}

// Transaction is one monthly contribution. After insert only Status,
// ProcessedAt and Archived change.
type Transaction struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	Amount        float64            `json:"amount" bson:"amount"` // baseAmount + penaltyAmount
	BaseAmount    float64            `json:"baseAmount" bson:"baseAmount"`
	PenaltyAmount float64            `json:"penaltyAmount" bson:"penaltyAmount"`
	Status        TransactionStatus  `json:"status" bson:"status"`
	ReceiptPath   string             `json:"receiptPath,omitempty" bson:"receiptPath,omitempty"`
	Note          string             `json:"note,omitempty" bson:"note,omitempty"`
	Archived      bool               `json:"archived" bson:"archived"`
	CycleNumber   int                `json:"cycleNumber" bson:"cycleNumber"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	ProcessedAt   *time.Time         `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
}

// DecisionRequest is the admin's verdict on a pending transaction.
// "approved" completes it, "rejected" closes it with no ledger effect.
type DecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note,omitempty"`
}

// PaymentSchedule is the live view of what a member owes right now.
type PaymentSchedule struct {
	NextPaymentDate time.Time `json:"nextPaymentDate"`
	DaysUntilDue    int       `json:"daysUntilDue"` // negative once the window has passed
	IsOverdue       bool      `json:"isOverdue"`
	OverdueMonths   int       `json:"overdueMonths"`
	BaseAmount      float64   `json:"baseAmount"`
	PenaltyAmount   float64   `json:"penaltyAmount"`
	TotalDue        float64   `json:"totalDue"`
}

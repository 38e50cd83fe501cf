package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	switch s {
	case WithdrawalPending:
		return next == WithdrawalCompleted || next == WithdrawalRejected
	default:
		return false
	}
}

// Withdrawal is a payout initiated by an admin and confirmed by the member.
// Amount is a snapshot of the member's cycle savings at processing time.
type Withdrawal struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	Amount       float64            `json:"amount" bson:"amount"`
	Fee          float64            `json:"fee" bson:"fee"`
	Status       WithdrawalStatus   `json:"status" bson:"status"`
	Confirmed    bool               `json:"confirmed" bson:"confirmed"` // member acknowledged receipt
	ReceiptPath  string             `json:"receiptPath,omitempty" bson:"receiptPath,omitempty"` // admin's transfer proof
	AdminMessage string             `json:"adminMessage,omitempty" bson:"adminMessage,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	ProcessedAt  *time.Time         `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	ConfirmedAt  *time.Time         `json:"confirmedAt,omitempty" bson:"confirmedAt,omitempty"`
}

// ConfirmWithdrawalRequest records whether the member actually received the
// payout. Received is a pointer so an explicit false survives binding.
type ConfirmWithdrawalRequest struct {
	Received *bool `json:"received" validate:"required"`
}

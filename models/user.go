package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role strings carried in JWT claims.
const (
	UserTypeAdmin  = "admin"
	UserTypeMember = "member"
)

type BankDetails struct {
	BankName      string `json:"bankName" bson:"bankName"`
	AccountNumber string `json:"accountNumber" bson:"accountNumber"`
	AccountName   string `json:"accountName" bson:"accountName"`
}

// User model
type User struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName     string             `json:"fullName" bson:"fullName"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone" bson:"phone"`
	IsAdmin      bool               `json:"isAdmin" bson:"isAdmin"`
	IsVerified   bool               `json:"isVerified" bson:"isVerified"`
	ReferralCode string             `json:"referralCode" bson:"referralCode"`
	ReferredBy   string             `json:"referredBy,omitempty" bson:"referredBy,omitempty"` // referral code of the referrer
	BankDetails  BankDetails        `json:"bankDetails" bson:"bankDetails"`

	// Savings-cycle state, reset when a withdrawal completes.
	Balance          float64    `json:"balance" bson:"balance"`
	TotalSaved       float64    `json:"totalSaved" bson:"totalSaved"`
	MonthsCompleted  int        `json:"monthsCompleted" bson:"monthsCompleted"`
	LastPaymentDate  *time.Time `json:"lastPaymentDate,omitempty" bson:"lastPaymentDate,omitempty"`
	NextPaymentDate  *time.Time `json:"nextPaymentDate,omitempty" bson:"nextPaymentDate,omitempty"`
	IsPaymentOverdue bool       `json:"isPaymentOverdue" bson:"isPaymentOverdue"`
	OverdueAmount    float64    `json:"overdueAmount" bson:"overdueAmount"`
	CycleNumber      int        `json:"cycleNumber" bson:"cycleNumber"`

	FCMToken  string    `json:"-" bson:"fcmToken,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserType maps the admin flag to the role string used in JWT claims.
func (u *User) UserType() string {
	if u.IsAdmin {
		return UserTypeAdmin
	}
	return UserTypeMember
}

// ReferralStats is computed on demand from the referred users and their
// completed transactions. It is never persisted.
type ReferralStats struct {
	TotalReferrals  int               `json:"totalReferrals"`
	ActiveReferrals int               `json:"activeReferrals"`
	TotalBonus      float64           `json:"totalBonus"`
	Referrals       []ReferralSummary `json:"referrals"`
}

type ReferralSummary struct {
	FullName          string    `json:"fullName"`
	JoinedAt          time.Time `json:"joinedAt"`
	CompletedPayments int       `json:"completedPayments"`
	Bonus             float64   `json:"bonus"`
}

type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// services/ledger.go
//
// Pure savings-cycle arithmetic. Everything here takes explicit inputs and a
// clock value so the workflows and the dashboard share one set of rules.
package services

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
)

// A payment month is a fixed 30-day window from the last approved payment.
const paymentWindowDays = 30

// ReferralBonusRate is the referrer's cut of a referred member's completed
// payments.
const ReferralBonusRate = 0.05

// ComputeNextPayment derives the member's current schedule. A member who has
// never paid in this cycle is due immediately with no penalty.
func ComputeNextPayment(cfg *models.Config, lastPaymentDate *time.Time, now time.Time) models.PaymentSchedule {
	schedule := models.PaymentSchedule{
		BaseAmount: cfg.MonthlyPaymentAmount,
		TotalDue:   cfg.MonthlyPaymentAmount,
	}

	if lastPaymentDate == nil {
		schedule.NextPaymentDate = now
		return schedule
	}

	daysSince := int(now.Sub(*lastPaymentDate).Hours() / 24)
	schedule.NextPaymentDate = lastPaymentDate.Add(paymentWindowDays * 24 * time.Hour)
	schedule.DaysUntilDue = paymentWindowDays - daysSince

	if daysSince > paymentWindowDays {
		schedule.IsOverdue = true
		schedule.OverdueMonths = daysSince / paymentWindowDays
		schedule.PenaltyAmount = cfg.MonthlyPaymentAmount * cfg.PenaltyMultiplier * float64(schedule.OverdueMonths)
		schedule.TotalDue = schedule.BaseAmount + schedule.PenaltyAmount
	}

	return schedule
}

// ApplyApprovedPayment credits one approved transaction to the member's
// cycle. The caller guards against applying the same transaction twice.
func ApplyApprovedPayment(user *models.User, txn *models.Transaction, now time.Time) {
	user.TotalSaved += txn.Amount
	user.Balance += txn.Amount
	user.MonthsCompleted++

	paidAt := now
	user.LastPaymentDate = &paidAt
	next := now.Add(paymentWindowDays * 24 * time.Hour)
	user.NextPaymentDate = &next

	user.IsPaymentOverdue = false
	user.OverdueAmount = 0
}

// IsEligibleForWithdrawal reports whether the member has completed enough
// months for a payout.
func IsEligibleForWithdrawal(user *models.User, cfg *models.Config) bool {
	return user.MonthsCompleted >= cfg.WithdrawalEligibilityMonths
}

// ResetCycle zeroes the member's cycle state and moves them to the next
// cycle. Archiving the cycle's transactions is the workflow's job.
func ResetCycle(user *models.User) {
	user.TotalSaved = 0
	user.Balance = 0
	user.MonthsCompleted = 0
	user.LastPaymentDate = nil
	user.NextPaymentDate = nil
	user.IsPaymentOverdue = false
	user.OverdueAmount = 0
	user.CycleNumber++
}

// ComputeReferralStats derives the referrer's bonus from the referred users
// and their transactions. Only completed transactions count.
func ComputeReferralStats(user *models.User, referred []models.User, txns []models.Transaction) models.ReferralStats {
	type tally struct {
		count  int
		amount float64
	}
	tallies := make(map[primitive.ObjectID]tally)
	for _, txn := range txns {
		if txn.Status != models.TransactionCompleted {
			continue
		}
		t := tallies[txn.UserID]
		t.count++
		t.amount += txn.Amount
		tallies[txn.UserID] = t
	}

	stats := models.ReferralStats{Referrals: []models.ReferralSummary{}}
	for _, ref := range referred {
		if ref.ReferredBy != user.ReferralCode {
			continue
		}
		t := tallies[ref.ID]
		bonus := t.amount * ReferralBonusRate

		stats.TotalReferrals++
		if t.count > 0 {
			stats.ActiveReferrals++
		}
		stats.TotalBonus += bonus
		stats.Referrals = append(stats.Referrals, models.ReferralSummary{
			FullName:          ref.FullName,
			JoinedAt:          ref.CreatedAt,
			CompletedPayments: t.count,
			Bonus:             bonus,
		})
	}

	return stats
}

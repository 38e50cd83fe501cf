// services/withdrawal_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/repositories"
)

// WithdrawalService owns the payout workflow. An admin transfers the money
// and records the withdrawal; the member then confirms or denies receipt.
// Confirmation completes the withdrawal and resets the savings cycle.
type WithdrawalService struct {
	users        repositories.UserRepository
	transactions repositories.TransactionRepository
	withdrawals  repositories.WithdrawalRepository
	configs      repositories.ConfigRepository
	notifier     *NotificationService
	locker       *UserLocker
	logger       *log.Logger
}

func NewWithdrawalService(
	users repositories.UserRepository,
	transactions repositories.TransactionRepository,
	withdrawals repositories.WithdrawalRepository,
	configs repositories.ConfigRepository,
	notifier *NotificationService,
	locker *UserLocker,
) *WithdrawalService {
	return &WithdrawalService{
		users:        users,
		transactions: transactions,
		withdrawals:  withdrawals,
		configs:      configs,
		notifier:     notifier,
		locker:       locker,
		logger:       log.New(os.Stdout, "[WITHDRAWAL] ", log.LstdFlags),
	}
}

// Process records a payout the admin has made to an eligible member. The
// amount is a snapshot of the member's cycle savings at this moment; nothing
// on the ledger changes until the member confirms receipt.
func (s *WithdrawalService) Process(ctx context.Context, targetUserID primitive.ObjectID, receiptPath, message string) (*models.Withdrawal, error) {
	unlock := s.locker.Lock(targetUserID)
	defer unlock()

	user, err := s.users.FindByID(ctx, targetUserID)
	if err == repositories.ErrNotFound {
		return nil, NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, newStorageError("load user", err)
	}

	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, newStorageError("load config", err)
	}

	if !IsEligibleForWithdrawal(user, cfg) {
		return nil, NewStateError("member has completed %d of %d required months",
			user.MonthsCompleted, cfg.WithdrawalEligibilityMonths)
	}

	if _, err := s.withdrawals.FindPendingByUser(ctx, targetUserID); err == nil {
		return nil, NewStateError("a pending withdrawal is already awaiting confirmation")
	} else if err != repositories.ErrNotFound {
		return nil, newStorageError("check pending withdrawal", err)
	}

	now := time.Now()
	withdrawal := &models.Withdrawal{
		UserID:       targetUserID,
		Amount:       user.TotalSaved,
		Fee:          cfg.WithdrawalProcessingFee,
		Status:       models.WithdrawalPending,
		Confirmed:    false,
		ReceiptPath:  receiptPath,
		AdminMessage: message,
		CreatedAt:    now,
		ProcessedAt:  &now,
	}
	if err := s.withdrawals.Insert(ctx, withdrawal); err != nil {
		return nil, newStorageError("insert withdrawal", err)
	}

	s.notifier.NotifyUser(targetUserID, "Payout sent",
		fmt.Sprintf("Your payout of %.0f has been transferred. Please confirm that you received it.", withdrawal.Amount),
		EventWithdrawalProcessed, map[string]interface{}{
			"withdrawalId": withdrawal.ID.Hex(),
			"amount":       withdrawal.Amount,
		})
	s.notifier.NotifyAdmins("Payout processed",
		fmt.Sprintf("A payout of %.0f was processed for %s.", withdrawal.Amount, user.FullName),
		EventWithdrawalProcessed, map[string]interface{}{
			"withdrawalId": withdrawal.ID.Hex(),
			"userId":       targetUserID.Hex(),
		})
	s.notifier.PublishSnapshots(targetUserID)

	return withdrawal, nil
}

// Confirm settles a pending withdrawal with the member's verdict. Receipt
// completes it and starts the next cycle; denial closes it without touching
// the ledger so an admin can investigate and process again. Either way the
// withdrawal can only be settled once.
func (s *WithdrawalService) Confirm(ctx context.Context, userID, withdrawalID primitive.ObjectID, received bool) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawals.FindByID(ctx, withdrawalID)
	if err == repositories.ErrNotFound {
		return nil, NewNotFoundError("withdrawal not found")
	}
	if err != nil {
		return nil, newStorageError("load withdrawal", err)
	}

	if withdrawal.UserID != userID {
		return nil, NewForbiddenError("withdrawal belongs to another member")
	}

	unlock := s.locker.Lock(userID)
	defer unlock()

	// Reload under the lock so a concurrent confirmation can't slip through.
	withdrawal, err = s.withdrawals.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, newStorageError("load withdrawal", err)
	}

	next := models.WithdrawalRejected
	if received {
		next = models.WithdrawalCompleted
	}
	if !withdrawal.Status.CanTransitionTo(next) {
		return nil, NewStateError("withdrawal has already been settled")
	}

	now := time.Now()
	withdrawal.Status = next
	withdrawal.Confirmed = received
	withdrawal.ConfirmedAt = &now

	// Settle the withdrawal first: if the cycle reset below fails, a retried
	// confirmation hits the status guard instead of resetting twice.
	if err := s.withdrawals.Update(ctx, withdrawal); err != nil {
		return nil, newStorageError("update withdrawal", err)
	}

	if received {
		if err := s.resetCycle(ctx, userID); err != nil {
			return nil, err
		}
	} else {
		s.notifier.NotifyAdmins("Payout not received",
			"A member reported that a processed payout never arrived.",
			EventWithdrawalRejected, map[string]interface{}{
				"withdrawalId": withdrawal.ID.Hex(),
				"userId":       userID.Hex(),
			})
		s.notifier.NotifyUser(userID, "Payout report recorded",
			"We recorded that the payout did not reach you. An admin will be in touch.",
			EventWithdrawalRejected, map[string]interface{}{
				"withdrawalId": withdrawal.ID.Hex(),
			})
	}

	s.notifier.PublishSnapshots(userID)

	return withdrawal, nil
}

// resetCycle zeroes the member's counters, bumps the cycle number and
// archives the finished cycle's transactions.
func (s *WithdrawalService) resetCycle(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err == repositories.ErrNotFound {
		return NewNotFoundError("user not found")
	}
	if err != nil {
		return newStorageError("load user", err)
	}

	ResetCycle(user)
	if err := s.users.Update(ctx, user); err != nil {
		return newStorageError("reset cycle", err)
	}

	if err := s.transactions.ArchiveCompletedForUser(ctx, userID); err != nil {
		s.logger.Printf("failed to archive transactions for %s: %v", userID.Hex(), err)
	}

	s.notifier.NotifyUser(userID, "New cycle started",
		fmt.Sprintf("Payout confirmed. Your savings cycle %d has begun.", user.CycleNumber),
		EventCycleReset, map[string]interface{}{
			"cycleNumber": user.CycleNumber,
		})
	s.notifier.NotifyAdmins("Withdrawal completed",
		fmt.Sprintf("%s confirmed their payout and moved to cycle %d.", user.FullName, user.CycleNumber),
		EventWithdrawalCompleted, map[string]interface{}{
			"userId": userID.Hex(),
		})

	return nil
}

// ListForUser returns the member's withdrawal history, newest first.
func (s *WithdrawalService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error) {
	withdrawals, err := s.withdrawals.FindByUser(ctx, userID)
	if err != nil {
		return nil, newStorageError("list withdrawals", err)
	}
	return withdrawals, nil
}

// ListAll returns every withdrawal across members.
func (s *WithdrawalService) ListAll(ctx context.Context) ([]models.Withdrawal, error) {
	withdrawals, err := s.withdrawals.FindAll(ctx)
	if err != nil {
		return nil, newStorageError("list withdrawals", err)
	}
	return withdrawals, nil
}

// PendingFor returns the member's open withdrawal, or nil when none awaits
// confirmation.
func (s *WithdrawalService) PendingFor(ctx context.Context, userID primitive.ObjectID) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawals.FindPendingByUser(ctx, userID)
	if err == repositories.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, newStorageError("load pending withdrawal", err)
	}
	return withdrawal, nil
}

// services/payment_service.go
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
	"github.com/AOladipo/thriftcircle_backend/utils"
)

// PaymentService owns the monthly contribution workflow: members submit a
// receipt, admins approve or reject, approval credits the savings cycle.
type PaymentService struct {
	users        repositories.UserRepository
	transactions repositories.TransactionRepository
	configs      repositories.ConfigRepository
	notifier     *NotificationService
	locker       *UserLocker
	logger       *log.Logger
}

func NewPaymentService(
	users repositories.UserRepository,
	transactions repositories.TransactionRepository,
	configs repositories.ConfigRepository,
	notifier *NotificationService,
	locker *UserLocker,
) *PaymentService {
	return &PaymentService{
		users:        users,
		transactions: transactions,
		configs:      configs,
		notifier:     notifier,
		locker:       locker,
		logger:       log.New(os.Stdout, "[PAYMENT] ", log.LstdFlags),
	}
}

// Submit records a new pending contribution. Any penalty the member owes is
// captured into the transaction amount; the swept overdue amount is cleared
// here and the overdue flag itself clears on approval.
func (s *PaymentService) Submit(ctx context.Context, userID primitive.ObjectID, receiptPath, note string) (*models.Transaction, error) {
	if receiptPath == "" {
		return nil, NewValidationError("a payment receipt is required")
	}

	unlock := s.locker.Lock(userID)
	defer unlock()

	user, err := s.users.FindByID(ctx, userID)
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

	now := time.Now()
	schedule := ComputeNextPayment(cfg, user.LastPaymentDate, now)

	penalty := user.OverdueAmount
	if penalty == 0 && schedule.IsOverdue {
		penalty = schedule.PenaltyAmount
	}

	txn := &models.Transaction{
		UserID:        userID,
		BaseAmount:    cfg.MonthlyPaymentAmount,
		PenaltyAmount: penalty,
		Amount:        cfg.MonthlyPaymentAmount + penalty,
		Status:        models.TransactionPending,
		ReceiptPath:   receiptPath,
		Note:          note,
		CycleNumber:   user.CycleNumber,
		CreatedAt:     now,
	}
	if err := s.transactions.Insert(ctx, txn); err != nil {
		return nil, newStorageError("insert transaction", err)
	}

	if user.OverdueAmount > 0 {
		user.OverdueAmount = 0
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.Printf("failed to clear overdue amount for %s: %v", userID.Hex(), err)
		}
	}

	s.notifier.NotifyUser(userID, "Payment submitted",
		fmt.Sprintf("Your payment of %.0f is awaiting review.", txn.Amount),
		EventPaymentSubmitted, map[string]interface{}{
			"transactionId": txn.ID.Hex(),
			"amount":        txn.Amount,
		})
	s.notifier.NotifyAdmins("New payment submitted",
		fmt.Sprintf("%s submitted a payment of %.0f.", user.FullName, txn.Amount),
		EventPaymentSubmitted, map[string]interface{}{
			"transactionId": txn.ID.Hex(),
			"userId":        userID.Hex(),
		})
	s.notifier.PublishSnapshots(userID)

	return txn, nil
}

// Decide settles a pending transaction. A transaction that has already been
// decided, in either direction, cannot be decided again.
func (s *PaymentService) Decide(ctx context.Context, txnID primitive.ObjectID, approve bool, note string) (*models.Transaction, error) {
	txn, err := s.transactions.FindByID(ctx, txnID)
	if err == repositories.ErrNotFound {
		return nil, NewNotFoundError("transaction not found")
	}
	if err != nil {
		return nil, newStorageError("load transaction", err)
	}

	unlock := s.locker.Lock(txn.UserID)
	defer unlock()

	// Reload under the lock so a concurrent decision can't slip through.
	txn, err = s.transactions.FindByID(ctx, txnID)
	if err != nil {
		return nil, newStorageError("load transaction", err)
	}

	next := models.TransactionRejected
	if approve {
		next = models.TransactionCompleted
	}
	if !txn.Status.CanTransitionTo(next) {
		return nil, NewStateError("transaction has already been processed")
	}

	user, err := s.users.FindByID(ctx, txn.UserID)
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

	now := time.Now()
	txn.Status = next
	txn.ProcessedAt = &now

	// The transaction is settled first: if the ledger write below fails, a
	// retried decision hits the status guard instead of crediting twice.
	if err := s.transactions.Update(ctx, txn); err != nil {
		return nil, newStorageError("update transaction", err)
	}

	if approve {
		ApplyApprovedPayment(user, txn, now)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, newStorageError("credit payment", err)
		}
	}

	s.notifyDecision(user, txn, cfg, approve, note)
	s.notifier.PublishSnapshots(txn.UserID)

	return txn, nil
}

func (s *PaymentService) notifyDecision(user *models.User, txn *models.Transaction, cfg *models.Config, approve bool, note string) {
	var title, message string
	event := EventPaymentRejected
	if approve {
		event = EventPaymentApproved
		title = "Payment approved"
		message = fmt.Sprintf("Your payment of %.0f was approved. Month %d of %d completed.",
			txn.Amount, user.MonthsCompleted, cfg.WithdrawalEligibilityMonths)
	} else {
		title = "Payment rejected"
		message = fmt.Sprintf("Your payment of %.0f was rejected.", txn.Amount)
		if note != "" {
			message += " Reason: " + note
		}
	}

	s.notifier.NotifyUser(user.ID, title, message, event, map[string]interface{}{
		"transactionId": txn.ID.Hex(),
		"amount":        txn.Amount,
	})
	s.notifier.NotifyAdmins(title, fmt.Sprintf("%s: %s", user.FullName, message), event, map[string]interface{}{
		"transactionId": txn.ID.Hex(),
		"userId":        user.ID.Hex(),
	})

	go func() {
		if err := utils.SendEmail(user.Email, title, message); err != nil {
			s.logger.Printf("failed to send decision email to %s: %v", user.Email, err)
		}
	}()
}

// ListForUser returns the member's current-cycle transactions, newest first.
func (s *PaymentService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	txns, err := s.transactions.FindByUser(ctx, userID)
	if err != nil {
		return nil, newStorageError("list transactions", err)
	}
	return txns, nil
}

// ListPending returns the admin review queue.
func (s *PaymentService) ListPending(ctx context.Context) ([]models.Transaction, error) {
	txns, err := s.transactions.FindPending(ctx)
	if err != nil {
		return nil, newStorageError("list pending transactions", err)
	}
	return txns, nil
}

// ListAll returns every transaction across members.
func (s *PaymentService) ListAll(ctx context.Context) ([]models.Transaction, error) {
	txns, err := s.transactions.FindAll(ctx)
	if err != nil {
		return nil, newStorageError("list transactions", err)
	}
	return txns, nil
}

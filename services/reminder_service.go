// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/repositories"
	"github.com/AOladipo/thriftcircle_backend/utils"
)

const (
	// Payment reminders go out in the morning, the overdue sweep runs just
	// after midnight so flags are set before members check their dashboards.
	reminderCronSpec = "0 8 * * *"
	overdueCronSpec  = "30 0 * * *"

	sweepTimeout = 2 * time.Minute
)

// ReminderService runs the scheduled jobs around the payment calendar:
// a daily reminder for members whose contribution is coming due, and a
// daily sweep that flags members who have slipped past the payment window.
type ReminderService struct {
	users    repositories.UserRepository
	configs  repositories.ConfigRepository
	notifier *NotificationService
	locker   *UserLocker
	cron     *cron.Cron
	logger   *log.Logger
}

func NewReminderService(
	users repositories.UserRepository,
	configs repositories.ConfigRepository,
	notifier *NotificationService,
	locker *UserLocker,
) *ReminderService {
	return &ReminderService{
		users:    users,
		configs:  configs,
		notifier: notifier,
		locker:   locker,
		cron:     cron.New(cron.WithLocation(time.Local)),
		logger:   log.New(os.Stdout, "[REMINDER] ", log.LstdFlags),
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *ReminderService) Start() {
	if _, err := s.cron.AddFunc(reminderCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := s.RunPaymentReminders(ctx); err != nil {
			s.logger.Printf("payment reminder run failed: %v", err)
		}
	}); err != nil {
		s.logger.Fatalf("could not schedule payment reminders: %v", err)
	}

	if _, err := s.cron.AddFunc(overdueCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := s.RunOverdueSweep(ctx); err != nil {
			s.logger.Printf("overdue sweep failed: %v", err)
		}
	}); err != nil {
		s.logger.Fatalf("could not schedule overdue sweep: %v", err)
	}

	s.cron.Start()
	s.logger.Println("payment reminder scheduler started")
}

// Stop halts the scheduler and waits for any running job to finish.
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Println("payment reminder scheduler stopped")
}

// RunPaymentReminders notifies every member whose next contribution falls
// due within the configured reminder window. Members already overdue are
// handled by the sweep instead.
func (s *ReminderService) RunPaymentReminders(ctx context.Context) error {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return newStorageError("load config", err)
	}

	members, err := s.users.FindMembers(ctx)
	if err != nil {
		return newStorageError("list members", err)
	}

	now := time.Now()
	sent := 0
	for i := range members {
		member := &members[i]
		schedule := ComputeNextPayment(cfg, member.LastPaymentDate, now)
		if schedule.IsOverdue {
			continue
		}
		if schedule.DaysUntilDue < 0 || schedule.DaysUntilDue > cfg.PaymentReminderDays {
			continue
		}

		title := "Payment due soon"
		message := fmt.Sprintf("Your contribution of %.0f is due in %d day(s).",
			schedule.TotalDue, schedule.DaysUntilDue)
		if schedule.DaysUntilDue == 0 {
			title = "Payment due today"
			message = fmt.Sprintf("Your contribution of %.0f is due today.", schedule.TotalDue)
		}

		s.notifier.NotifyUser(member.ID, title, message, EventPaymentReminder, map[string]interface{}{
			"dueDate": schedule.NextPaymentDate.Format("2006-01-02"),
			"amount":  schedule.TotalDue,
		})
		go func(email, name string) {
			if err := utils.SendEmail(email, title, fmt.Sprintf("Dear %s,\n\n%s\n\n%s", name, message, emailSignature())); err != nil {
				s.logger.Printf("failed to send reminder email to %s: %v", email, err)
			}
		}(member.Email, member.FullName)
		sent++
	}

	s.logger.Printf("payment reminder run finished, %d member(s) notified", sent)
	return nil
}

// RunOverdueSweep flags members who have gone past the payment window and
// persists the accrued penalty so it is collected with their next payment.
// A member already flagged at the same penalty is left alone; the flag is
// refreshed and re-announced when another overdue month accrues.
func (s *ReminderService) RunOverdueSweep(ctx context.Context) error {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return newStorageError("load config", err)
	}

	members, err := s.users.FindMembers(ctx)
	if err != nil {
		return newStorageError("list members", err)
	}

	now := time.Now()
	flagged := 0
	for i := range members {
		member := &members[i]
		schedule := ComputeNextPayment(cfg, member.LastPaymentDate, now)
		if !schedule.IsOverdue {
			continue
		}
		if member.IsPaymentOverdue && member.OverdueAmount == schedule.PenaltyAmount {
			continue
		}

		if err := s.flagOverdue(ctx, member.ID, schedule); err != nil {
			s.logger.Printf("failed to flag member %s as overdue: %v", member.ID.Hex(), err)
			continue
		}
		flagged++
	}

	s.logger.Printf("overdue sweep finished, %d member(s) flagged", flagged)
	return nil
}

func (s *ReminderService) flagOverdue(ctx context.Context, userID primitive.ObjectID, schedule models.PaymentSchedule) error {
	unlock := s.locker.Lock(userID)
	defer unlock()

	// Reload under the lock; the member may have paid since the listing.
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsPaymentOverdue || user.OverdueAmount != schedule.PenaltyAmount {
		user.IsPaymentOverdue = true
		user.OverdueAmount = schedule.PenaltyAmount
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
	}

	message := fmt.Sprintf("Your payment is %d month(s) overdue. A penalty of %.0f has been added, bringing your next payment to %.0f.",
		schedule.OverdueMonths, schedule.PenaltyAmount, schedule.TotalDue)
	s.notifier.NotifyUser(userID, "Payment overdue", message, EventPaymentOverdue, map[string]interface{}{
		"overdueMonths": schedule.OverdueMonths,
		"penaltyAmount": schedule.PenaltyAmount,
		"totalDue":      schedule.TotalDue,
	})
	go func(email, name string) {
		if err := utils.SendEmail(email, "Payment overdue", fmt.Sprintf("Dear %s,\n\n%s\n\n%s", name, message, emailSignature())); err != nil {
			s.logger.Printf("failed to send overdue email to %s: %v", email, err)
		}
	}(user.Email, user.FullName)

	return nil
}

func emailSignature() string {
	return "Best regards,\nThe ThriftCircle Team"
}

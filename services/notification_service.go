// services/notification_service.go
package services

import (
	"context"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/config"
	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/repositories"
	"github.com/AOladipo/thriftcircle_backend/websocket"
)

// Event names published over the fanout and stored as notification types.
const (
	EventPaymentSubmitted    = "payment_submitted"
	EventPaymentApproved     = "payment_approved"
	EventPaymentRejected     = "payment_rejected"
	EventWithdrawalProcessed = "withdrawal_processed"
	EventWithdrawalCompleted = "withdrawal_completed"
	EventWithdrawalRejected  = "withdrawal_rejected"
	EventCycleReset          = "cycle_reset"
	EventPaymentReminder     = "payment_reminder"
	EventPaymentOverdue      = "payment_overdue"
	EventConfigUpdated       = "config_updated"
	EventAccountVerified     = "account_verified"
	EventMemberJoined        = "member_joined"
)

// NotificationService bridges state transitions to the outside world: it
// persists notification rows, publishes fanout events, and pushes over FCM.
// Everything is best-effort; a delivery failure is logged and never propagates
// back into the transition that triggered it.
type NotificationService struct {
	users         repositories.UserRepository
	transactions  repositories.TransactionRepository
	withdrawals   repositories.WithdrawalRepository
	notifications repositories.NotificationRepository
	hub           *websocket.Hub
	logger        *log.Logger
}

func NewNotificationService(
	users repositories.UserRepository,
	transactions repositories.TransactionRepository,
	withdrawals repositories.WithdrawalRepository,
	notifications repositories.NotificationRepository,
	hub *websocket.Hub,
) *NotificationService {
	return &NotificationService{
		users:         users,
		transactions:  transactions,
		withdrawals:   withdrawals,
		notifications: notifications,
		hub:           hub,
		logger:        log.New(os.Stdout, "[NOTIFY] ", log.LstdFlags),
	}
}

// NotifyUser persists a notification for one member, publishes it on their
// channel and attempts an FCM push.
func (s *NotificationService) NotifyUser(userID primitive.ObjectID, title, message, notifType string, data map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Insert(ctx, notification); err != nil {
		s.logger.Printf("failed to save notification for %s: %v", userID.Hex(), err)
	}

	s.hub.Publish(websocket.UserChannel(userID), notifType, notification)

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Printf("failed to load user %s for push: %v", userID.Hex(), err)
		return
	}
	s.sendPush(ctx, user, title, message, data)
}

// NotifyAdmins persists a notification row per admin and publishes once on
// the admin channel.
func (s *NotificationService) NotifyAdmins(title, message, notifType string, data map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		s.logger.Printf("failed to load admins: %v", err)
		admins = nil
	}

	now := time.Now()
	for _, admin := range admins {
		notification := &models.Notification{
			UserID:    admin.ID,
			Title:     title,
			Message:   message,
			Type:      notifType,
			Data:      data,
			CreatedAt: now,
		}
		if err := s.notifications.Insert(ctx, notification); err != nil {
			s.logger.Printf("failed to save admin notification: %v", err)
		}
	}

	s.hub.Publish(websocket.ChannelAdmin, notifType, &models.Notification{
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		CreatedAt: now,
	})
}

// Broadcast persists one row with the broadcast sentinel id and publishes to
// every connected client.
func (s *NotificationService) Broadcast(title, message, notifType string, data map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := &models.Notification{
		UserID:    primitive.NilObjectID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Insert(ctx, notification); err != nil {
		s.logger.Printf("failed to save broadcast notification: %v", err)
	}

	s.hub.Publish(websocket.ChannelBroadcast, notifType, notification)
}

// PublishSnapshots pushes fresh collection views: full snapshots to the admin
// channel, the member's own lists to their channel. Runs detached so the
// originating state transition never waits on it.
func (s *NotificationService) PublishSnapshots(userID primitive.ObjectID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if users, err := s.users.FindAll(ctx); err == nil {
			s.hub.Publish(websocket.ChannelAdmin, "users_snapshot", users)
		} else {
			s.logger.Printf("users snapshot failed: %v", err)
		}
		if txns, err := s.transactions.FindAll(ctx); err == nil {
			s.hub.Publish(websocket.ChannelAdmin, "transactions_snapshot", txns)
		} else {
			s.logger.Printf("transactions snapshot failed: %v", err)
		}
		if withdrawals, err := s.withdrawals.FindAll(ctx); err == nil {
			s.hub.Publish(websocket.ChannelAdmin, "withdrawals_snapshot", withdrawals)
		} else {
			s.logger.Printf("withdrawals snapshot failed: %v", err)
		}

		if userID.IsZero() {
			return
		}
		if txns, err := s.transactions.FindByUser(ctx, userID); err == nil {
			s.hub.Publish(websocket.UserChannel(userID), "transactions", txns)
		}
		if withdrawals, err := s.withdrawals.FindByUser(ctx, userID); err == nil {
			s.hub.Publish(websocket.UserChannel(userID), "withdrawals", withdrawals)
		}
	}()
}

// sendPush delivers an FCM push when Firebase is configured and the user has
// a registered device token.
func (s *NotificationService) sendPush(ctx context.Context, user *models.User, title, message string, data map[string]interface{}) {
	if config.FirebaseApp == nil || user.FCMToken == "" {
		return
	}

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		s.logger.Printf("failed to get messaging client: %v", err)
		return
	}

	payload := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for key, value := range data {
		if str, ok := value.(string); ok {
			payload[key] = str
		}
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "thriftcircle_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
				},
			},
		},
	}

	if _, err := client.Send(ctx, fcmMessage); err != nil {
		s.logger.Printf("failed to send FCM push to %s: %v", user.ID.Hex(), err)
	}
}

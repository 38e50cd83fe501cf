package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
)

// seedEligibleMember stores a member who has completed a full cycle, along
// with their completed transactions.
func seedEligibleMember(env *testEnv) models.User {
	member := env.seedMember("Ada Obi", "ada@example.com")
	last := time.Now().AddDate(0, 0, -10)
	member.MonthsCompleted = 6
	member.TotalSaved = 72000
	member.Balance = 72000
	member.LastPaymentDate = &last
	env.users.Put(member)

	for i := 0; i < 6; i++ {
		env.transactions.Put(models.Transaction{
			ID:          primitive.NewObjectID(),
			UserID:      member.ID,
			Amount:      12000,
			BaseAmount:  12000,
			Status:      models.TransactionCompleted,
			CycleNumber: member.CycleNumber,
			CreatedAt:   time.Now().AddDate(0, 0, -30*(6-i)),
		})
	}
	return member
}

func TestWithdrawalService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots the cycle savings into a pending withdrawal", func(t *testing.T) {
		env := newTestEnv()
		member := seedEligibleMember(env)
		cfg, _ := env.configs.Get(ctx)
		cfg.WithdrawalProcessingFee = 500
		require.NoError(t, env.configs.Update(ctx, cfg))

		w, err := env.payouts.Process(ctx, member.ID, "/uploads/payouts/p1.png", "sent via transfer")
		require.NoError(t, err)

		assert.Equal(t, models.WithdrawalPending, w.Status)
		assert.False(t, w.Confirmed)
		assert.Equal(t, float64(72000), w.Amount)
		assert.Equal(t, float64(500), w.Fee)
		assert.Equal(t, "/uploads/payouts/p1.png", w.ReceiptPath)
		assert.Equal(t, "sent via transfer", w.AdminMessage)
		require.NotNil(t, w.ProcessedAt)

		assert.Equal(t, 1, env.notifications.CountForUser(member.ID, EventWithdrawalProcessed))

		// Nothing on the ledger moves until the member confirms.
		untouched := env.users.Get(member.ID)
		assert.Equal(t, float64(72000), untouched.TotalSaved)
		assert.Equal(t, 6, untouched.MonthsCompleted)
		assert.Equal(t, 1, untouched.CycleNumber)
	})

	t.Run("refuses a member short of the required months", func(t *testing.T) {
		env := newTestEnv()
		member := env.seedMember("Ada Obi", "ada@example.com")
		member.MonthsCompleted = 5
		member.TotalSaved = 60000
		env.users.Put(member)

		_, err := env.payouts.Process(ctx, member.ID, "", "")

		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr)
	})

	t.Run("refuses a second payout while one awaits confirmation", func(t *testing.T) {
		env := newTestEnv()
		member := seedEligibleMember(env)

		_, err := env.payouts.Process(ctx, member.ID, "", "")
		require.NoError(t, err)

		_, err = env.payouts.Process(ctx, member.ID, "", "")
		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr)
	})

	t.Run("unknown member", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.payouts.Process(ctx, primitive.NewObjectID(), "", "")

		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestWithdrawalService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed receipt completes the payout and starts the next cycle", func(t *testing.T) {
		env := newTestEnv()
		member := seedEligibleMember(env)
		w, err := env.payouts.Process(ctx, member.ID, "", "")
		require.NoError(t, err)

		confirmed, err := env.payouts.Confirm(ctx, member.ID, w.ID, true)
		require.NoError(t, err)

		assert.Equal(t, models.WithdrawalCompleted, confirmed.Status)
		assert.True(t, confirmed.Confirmed)
		require.NotNil(t, confirmed.ConfirmedAt)

		reset := env.users.Get(member.ID)
		assert.Equal(t, float64(0), reset.TotalSaved)
		assert.Equal(t, float64(0), reset.Balance)
		assert.Equal(t, 0, reset.MonthsCompleted)
		assert.Nil(t, reset.LastPaymentDate)
		assert.Equal(t, 2, reset.CycleNumber)

		history, err := env.transactions.FindByUser(ctx, member.ID)
		require.NoError(t, err)
		assert.Empty(t, history, "the finished cycle's transactions are archived")

		all, err := env.transactions.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 6, "archived transactions are kept, not deleted")

		assert.Equal(t, 1, env.notifications.CountForUser(member.ID, EventCycleReset))
	})

	t.Run("a declined payout leaves the cycle in place", func(t *testing.T) {
		env := newTestEnv()
		member := seedEligibleMember(env)
		w, err := env.payouts.Process(ctx, member.ID, "", "")
		require.NoError(t, err)

		declined, err := env.payouts.Confirm(ctx, member.ID, w.ID, false)
		require.NoError(t, err)

		assert.Equal(t, models.WithdrawalRejected, declined.Status)
		assert.False(t, declined.Confirmed)

		kept := env.users.Get(member.ID)
		assert.Equal(t, float64(72000), kept.TotalSaved)
		assert.Equal(t, 6, kept.MonthsCompleted)
		assert.Equal(t, 1, kept.CycleNumber)
		assert.Equal(t, 1, env.notifications.CountForUser(member.ID, EventWithdrawalRejected))

		// The slot is free again, so the admin can process a fresh payout.
		_, err = env.payouts.Process(ctx, member.ID, "", "second attempt")
		require.NoError(t, err)
	})

	t.Run("a settled withdrawal cannot be confirmed again", func(t *testing.T) {
		env := newTestEnv()
		member := seedEligibleMember(env)
		w, err := env.payouts.Process(ctx, member.ID, "", "")
		require.NoError(t, err)

		_, err = env.payouts.Confirm(ctx, member.ID, w.ID, true)
		require.NoError(t, err)

		_, err = env.payouts.Confirm(ctx, member.ID, w.ID, true)
		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr)

		assert.Equal(t, 2, env.users.Get(member.ID).CycleNumber, "replay must not reset twice")
	})

	t.Run("only the owner can confirm", func(t *testing.T) {
		env := newTestEnv()
		member := seedEligibleMember(env)
		w, err := env.payouts.Process(ctx, member.ID, "", "")
		require.NoError(t, err)

		other := env.seedMember("Bisi Ade", "bisi@example.com")
		_, err = env.payouts.Confirm(ctx, other.ID, w.ID, true)

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.True(t, authErr.Forbidden)
		assert.Equal(t, models.WithdrawalPending, env.withdrawals.Get(w.ID).Status)
	})

	t.Run("unknown withdrawal", func(t *testing.T) {
		env := newTestEnv()
		member := env.seedMember("Ada Obi", "ada@example.com")

		_, err := env.payouts.Confirm(ctx, member.ID, primitive.NewObjectID(), true)

		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("the withdrawal settles before the cycle resets", func(t *testing.T) {
		env := newTestEnv()
		member := seedEligibleMember(env)
		w, err := env.payouts.Process(ctx, member.ID, "", "")
		require.NoError(t, err)
		env.users.FailOnUpdate = true

		_, err = env.payouts.Confirm(ctx, member.ID, w.ID, true)

		var storageErr *StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, models.WithdrawalCompleted, env.withdrawals.Get(w.ID).Status,
			"the member's verdict must stick")
		assert.Equal(t, 1, env.users.Get(member.ID).CycleNumber)
	})
}

package models

import "testing"

func TestWithdrawalStatusTransitions(t *testing.T) {
	tests := []struct {
		from WithdrawalStatus
		to   WithdrawalStatus
		want bool
	}{
		{WithdrawalPending, WithdrawalCompleted, true},
		{WithdrawalPending, WithdrawalRejected, true},
		{WithdrawalPending, WithdrawalPending, false},
		{WithdrawalCompleted, WithdrawalRejected, false},
		{WithdrawalCompleted, WithdrawalPending, false},
		{WithdrawalRejected, WithdrawalCompleted, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

package repository

import "errors"

// Common repository errors
var (
	// ErrMemberNotFound is returned when a user is not a member of the organization
	ErrMemberNotFound = errors.New("member not found")

	// ErrRewardNotFound is returned when a reward is not found
	ErrRewardNotFound = errors.New("reward not found")

	// ErrRedemptionNotFound is returned when a redemption is not found
	ErrRedemptionNotFound = errors.New("redemption not found")

	// ErrGoalNotFound is returned when a goal is not found
	ErrGoalNotFound = errors.New("goal not found")

	// ErrDuplicateRedemption is returned when the user already holds an open redemption of the reward
	ErrDuplicateRedemption = errors.New("duplicate redemption")

	// ErrNegativeBalance is returned when a debit exceeds the current balance
	ErrNegativeBalance = errors.New("points balance cannot go negative")
)

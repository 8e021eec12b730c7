package service

import "errors"

var (
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyRedeemed    = errors.New("already redeemed")
	ErrRewardInactive     = errors.New("reward is not active")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrInvalidPeriod      = errors.New("period must be week or month")
	ErrInvalidPointsCost  = errors.New("points cost must be positive")
)

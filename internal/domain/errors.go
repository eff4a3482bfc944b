package domain

import "errors"

// Policy rejections. These are terminal for the triggering submission and are
// surfaced verbatim to the submitting user; they are never retried and never
// logged as errors.
var (
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrTargetNotFound   = errors.New("reviewed user not found in guild")
	ErrSelfReview       = errors.New("cannot review yourself")
	ErrDuplicateSameDay = errors.New("target already reviewed by this author today")
	ErrCooldownActive   = errors.New("author is still in the submission cooldown")
)

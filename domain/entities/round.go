package entities

import "time"

// RoundKind distinguishes the two long-running game variants
type RoundKind string

const (
	RoundKindMysterySearch RoundKind = "mystery_search"
	RoundKindLockToWin     RoundKind = "lock_to_win"
)

// RoundStatus is the lifecycle state of a round
type RoundStatus string

const (
	RoundStatusRegistration RoundStatus = "registration"
	RoundStatusActive       RoundStatus = "active"
	RoundStatusCompleted    RoundStatus = "completed"
	RoundStatusCancelled    RoundStatus = "cancelled"
)

// CommitmentType is how a participant's stake behaves when they do not win
type CommitmentType string

const (
	// CommitmentRefundable stakes are returned atomically at round completion
	CommitmentRefundable CommitmentType = "refundable"
	// CommitmentCarryForward stakes remain pooled into the next round until
	// the user explicitly requests an unlock
	CommitmentCarryForward CommitmentType = "carry_forward"
)

// Round is a multi-day game instance. Money is held in the per-round pool
// rather than settled individually until the round completes.
type Round struct {
	ID              int64       `db:"id"`
	Kind            RoundKind   `db:"kind"`
	Status          RoundStatus `db:"status"`
	StakeAmount     int64       `db:"stake_amount"` // cents per participant
	PrizeAmount     int64       `db:"prize_amount"` // cents, house-funded winner prize
	Pool            int64       `db:"pool"`         // cents of locked stakes currently held
	SecretCipher    []byte      `db:"secret_cipher"` // AES-GCM sealed seed phrase, mystery-search only
	RegistrationEnd time.Time   `db:"registration_end"`
	EndsAt          time.Time   `db:"ends_at"`
	CompletedAt     *time.Time  `db:"completed_at"`
	CreatedAt       time.Time   `db:"created_at"`
}

// IsOpenForRegistration returns true while participants may still join
func (r *Round) IsOpenForRegistration(now time.Time) bool {
	return r.Status == RoundStatusRegistration && now.Before(r.RegistrationEnd)
}

// IsDue returns true once the round has passed its end time
func (r *Round) IsDue(now time.Time) bool {
	return r.Status == RoundStatusActive && !r.EndsAt.After(now)
}

// Complete marks the round settled
func (r *Round) Complete(now time.Time) {
	r.Status = RoundStatusCompleted
	r.CompletedAt = &now
}

// RoundClue is one staged reveal event within a mystery-search round
type RoundClue struct {
	ID         int64      `db:"id"`
	RoundID    int64      `db:"round_id"`
	Sequence   int        `db:"sequence"`
	Text       string     `db:"text"`
	RevealAt   time.Time  `db:"reveal_at"`
	RevealedAt *time.Time `db:"revealed_at"`
}

// IsDue returns true when the clue should be revealed
func (c *RoundClue) IsDue(now time.Time) bool {
	return c.RevealedAt == nil && !c.RevealAt.After(now)
}

// Reveal marks the clue as published
func (c *RoundClue) Reveal(now time.Time) {
	c.RevealedAt = &now
}

// RoundParticipant records one user's locked stake in a round
type RoundParticipant struct {
	ID                int64          `db:"id"`
	RoundID           int64          `db:"round_id"`
	UserID            int64          `db:"user_id"`
	Stake             int64          `db:"stake"` // cents, debited at registration
	Commitment        CommitmentType `db:"commitment"`
	Won               bool           `db:"won"`
	RefundedAt        *time.Time     `db:"refunded_at"`
	UnlockRequestedAt *time.Time     `db:"unlock_requested_at"`
	ReleasedAt        *time.Time     `db:"released_at"`
	CreatedAt         time.Time      `db:"created_at"`
}

// IsLocked returns true while the stake is still held in a pool
func (p *RoundParticipant) IsLocked() bool {
	return !p.Won && p.RefundedAt == nil && p.ReleasedAt == nil
}

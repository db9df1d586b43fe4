package services

import (
	"fmt"
	"strings"

	"fortuna/domain/entities"
)

// TierKind determines how a tier's winner count is derived from the pool
type TierKind int

const (
	// TierKindThreshold awards one winner per pool threshold strictly
	// exceeded. Used for the rare high-value tiers.
	TierKindThreshold TierKind = iota

	// TierKindFloorDivide awards remaining-pool / amount winners, so richer
	// pools produce proportionally more winners.
	TierKindFloorDivide
)

// TierRule describes one prize band of a draw type's payout structure
type TierRule struct {
	Tier        entities.PrizeTier
	Amount      int64 // cents per winner
	Kind        TierKind
	Thresholds  []int64 // ascending pool thresholds, TierKindThreshold only
	Description string

	// DisplayFallback injects a synthetic display-only record when the tier
	// selects no real winner. Marketing behavior kept deliberately separate
	// from real allocations; dropping it is a filter on this flag.
	DisplayFallback bool
}

// TierRulesFor returns the payout structure for a draw frequency. Amounts
// and thresholds are in cents.
func TierRulesFor(freq entities.DrawFrequency) []TierRule {
	switch freq {
	case entities.DrawFrequencyWeekly:
		return []TierRule{
			{
				Tier:            entities.PrizeTierMotorcycle,
				Amount:          500_000,
				Kind:            TierKindThreshold,
				Thresholds:      []int64{700_000, 1_200_000, 1_700_000, 2_200_000},
				Description:     "Motorcycle",
				DisplayFallback: true,
			},
			{Tier: entities.PrizeTierCash20, Amount: 2_000, Kind: TierKindFloorDivide, Description: "$20 Cash"},
		}
	case entities.DrawFrequencyMonthly:
		return []TierRule{
			{
				Tier:            entities.PrizeTierCar,
				Amount:          2_000_000,
				Kind:            TierKindThreshold,
				Thresholds:      []int64{4_500_000},
				Description:     "Car",
				DisplayFallback: true,
			},
			{
				Tier:        entities.PrizeTierMegaCash,
				Amount:      1_000_000,
				Kind:        TierKindThreshold,
				Thresholds:  []int64{2_500_000},
				Description: "Mega Cash Prize",
			},
			{
				Tier:        entities.PrizeTierDevice,
				Amount:      150_000,
				Kind:        TierKindThreshold,
				Thresholds:  []int64{1_000_000, 1_500_000, 2_000_000},
				Description: "Device",
			},
			{Tier: entities.PrizeTierCash50, Amount: 5_000, Kind: TierKindFloorDivide, Description: "$50 Cash"},
		}
	default: // daily
		return []TierRule{
			{
				Tier:            entities.PrizeTierMegaCash,
				Amount:          1_000_000,
				Kind:            TierKindThreshold,
				Thresholds:      []int64{1_050_000},
				Description:     "Mega Cash Prize",
				DisplayFallback: true,
			},
			{Tier: entities.PrizeTierCash50, Amount: 5_000, Kind: TierKindFloorDivide, Description: "$50 Cash"},
			{Tier: entities.PrizeTierCash10, Amount: 1_000, Kind: TierKindFloorDivide, Description: "$10 Cash"},
			{Tier: entities.PrizeTierCash5, Amount: 500, Kind: TierKindFloorDivide, Description: "$5 Cash"},
		}
	}
}

// EligibleTicket is one entry in the selection pool
type EligibleTicket struct {
	TicketID int64
	UserID   int64
}

// WinnerAllocation is one allocator output: who wins what at which tier.
// Display-only allocations reference no ticket or user and move no money.
type WinnerAllocation struct {
	TicketID    *int64
	UserID      *int64
	Tier        entities.PrizeTier
	Amount      int64
	Description string
	DisplayOnly bool
}

// Allocate maps a distributable pool and a set of eligible tickets onto
// winner allocations for the given rules. Pure computation apart from the
// injected randomness: no participant wins twice within one draw, and the
// sum of real allocations never exceeds the pool. Zero eligible tickets or
// an exhausted pool is a valid zero-winner outcome, not an error.
func Allocate(rules []TierRule, pool int64, eligible []EligibleTicket, rng Rand) ([]WinnerAllocation, error) {
	remaining := pool
	candidates := make([]EligibleTicket, len(eligible))
	copy(candidates, eligible)

	var allocations []WinnerAllocation

	for _, rule := range rules {
		count := rule.winnerCount(remaining)

		// Each selection removes every ticket of the chosen user, so the
		// candidate pool can shrink by more than one per pick. Running out of
		// unique users mid-tier is a valid fewer-winner outcome.
		var allocated int64
		for allocated < count && len(candidates) > 0 {
			idx, err := rng.IntN(int64(len(candidates)))
			if err != nil {
				return nil, fmt.Errorf("winner selection for tier %s: %w", rule.Tier, err)
			}
			winner := candidates[idx]

			candidates = withoutUser(candidates, winner.UserID)
			remaining -= rule.Amount
			allocated++

			ticketID := winner.TicketID
			userID := winner.UserID
			allocations = append(allocations, WinnerAllocation{
				TicketID:    &ticketID,
				UserID:      &userID,
				Tier:        rule.Tier,
				Amount:      rule.Amount,
				Description: rule.Description,
			})
		}

		if rule.DisplayFallback && allocated == 0 {
			allocations = append(allocations, WinnerAllocation{
				Tier:        rule.Tier,
				Amount:      rule.Amount,
				Description: rule.Description,
				DisplayOnly: true,
			})
		}
	}

	return allocations, nil
}

// winnerCount derives how many winners the pool can fund at this tier
func (r TierRule) winnerCount(remaining int64) int64 {
	if r.Amount <= 0 || remaining < r.Amount {
		return 0
	}
	switch r.Kind {
	case TierKindThreshold:
		var count int64
		for _, threshold := range r.Thresholds {
			if remaining > threshold {
				count++
			}
		}
		// Thresholds are sized to cover their winners, but never let the
		// tier overdraw the pool.
		if max := remaining / r.Amount; count > max {
			count = max
		}
		return count
	default:
		return remaining / r.Amount
	}
}

// withoutUser removes every ticket owned by the given user, so a participant
// holding many tickets can still win at most once per draw.
func withoutUser(candidates []EligibleTicket, userID int64) []EligibleTicket {
	out := candidates[:0]
	for _, c := range candidates {
		if c.UserID != userID {
			out = append(out, c)
		}
	}
	return out
}

// GenerateWinningNumbers produces the display winning-number line for a
// settled draw: count unique numbers in [1, maxNumber], dash-separated.
func GenerateWinningNumbers(rng Rand, count, maxNumber int) (string, error) {
	if count <= 0 || maxNumber < count {
		return "", fmt.Errorf("invalid winning number shape: %d of %d", count, maxNumber)
	}

	drawn := make(map[int64]bool, count)
	parts := make([]string, 0, count)
	for len(parts) < count {
		n, err := rng.IntRange(1, int64(maxNumber))
		if err != nil {
			return "", err
		}
		if drawn[n] {
			continue
		}
		drawn[n] = true
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, "-"), nil
}

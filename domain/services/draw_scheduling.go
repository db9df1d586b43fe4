package services

import (
	"context"
	"fmt"
	"time"

	"fortuna/domain/entities"
	"fortuna/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// drawSchedulingService keeps a future draw in existence for every enabled
// lottery type.
type drawSchedulingService struct {
	drawRepo        interfaces.DrawRepository
	lotteryTypeRepo interfaces.LotteryTypeRepository
}

// NewDrawSchedulingService creates a new draw scheduling service
func NewDrawSchedulingService(
	drawRepo interfaces.DrawRepository,
	lotteryTypeRepo interfaces.LotteryTypeRepository,
) interfaces.DrawSchedulingService {
	return &drawSchedulingService{
		drawRepo:        drawRepo,
		lotteryTypeRepo: lotteryTypeRepo,
	}
}

// EnsureUpcomingDraws creates the next draw for every enabled lottery type
// that has none scheduled after now. Returns the draws it created.
func (s *drawSchedulingService) EnsureUpcomingDraws(ctx context.Context, now time.Time) ([]*entities.Draw, error) {
	types, err := s.lotteryTypeRepo.GetEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery types: %w", err)
	}

	var created []*entities.Draw
	for _, lt := range types {
		exists, err := s.drawRepo.HasUpcoming(ctx, lt.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to check upcoming draws for %s: %w", lt.Code, err)
		}
		if exists {
			continue
		}

		draw := &entities.Draw{
			LotteryTypeID: lt.ID,
			Frequency:     lt.Frequency,
			DrawDate:      NextDrawTime(lt.Frequency, now),
			Status:        entities.DrawStatusScheduled,
		}
		if err := s.drawRepo.Create(ctx, draw); err != nil {
			return nil, fmt.Errorf("failed to schedule %s draw: %w", lt.Code, err)
		}

		log.WithFields(log.Fields{
			"lotteryType": lt.Code,
			"drawDate":    draw.DrawDate,
		}).Info("Scheduled next draw")
		created = append(created, draw)
	}

	return created, nil
}

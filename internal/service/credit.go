package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/thanku/internal/domain"
)

const maxDescriptionLength = 255

// CreditService records and lists thank-you credits.
type CreditService struct {
	credits domain.CreditRepository
	users   domain.UserRepository
}

// NewCreditService creates a new CreditService.
func NewCreditService(credits domain.CreditRepository, users domain.UserRepository) *CreditService {
	return &CreditService{credits: credits, users: users}
}

// Give records that giver thanked the user with recipientID. It returns the
// recipient so callers can echo it back.
func (s *CreditService) Give(ctx context.Context, giver *domain.User, recipientID int64, point int, description string) (*domain.User, error) {
	description = strings.TrimSpace(description)
	switch {
	case point <= 0:
		return nil, fmt.Errorf("%w: point must be positive", domain.ErrInvalidInput)
	case description == "":
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	case len(description) > maxDescriptionLength:
		return nil, fmt.Errorf("%w: description must be at most %d characters", domain.ErrInvalidInput, maxDescriptionLength)
	case recipientID == giver.ID:
		return nil, fmt.Errorf("%w: cannot thank yourself", domain.ErrInvalidInput)
	}

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}

	credit := &domain.Credit{
		UserID:      giver.ID,
		RecipientID: recipient.ID,
		Description: description,
		Point:       point,
	}
	if err := s.credits.Create(ctx, credit); err != nil {
		return nil, fmt.Errorf("create credit: %w", err)
	}
	return recipient, nil
}

// List returns every credit with its giver and recipient.
func (s *CreditService) List(ctx context.Context) ([]domain.CreditWithUsers, error) {
	return s.credits.List(ctx)
}

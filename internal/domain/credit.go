package domain

import (
	"context"
	"time"
)

// Credit is a point-bearing thank-you message from one user to another.
type Credit struct {
	ID          int64
	UserID      int64 // giver
	RecipientID int64
	Description string
	Point       int
	CreatedAt   time.Time
}

// CreditWithUsers is a Credit joined with both of its users, as listed by the API.
type CreditWithUsers struct {
	Credit
	User      User
	Recipient User
}

type CreditRepository interface {
	Create(ctx context.Context, credit *Credit) error
	List(ctx context.Context) ([]CreditWithUsers, error)
}

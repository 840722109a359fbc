package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/thanku/internal/domain"
)

// CreditRepository implements domain.CreditRepository using SQLite.
type CreditRepository struct {
	db *sql.DB
}

var _ domain.CreditRepository = (*CreditRepository)(nil)

func NewCreditRepository(db *DB) *CreditRepository {
	return &CreditRepository{db: db.SqlDB}
}

// Create inserts a credit. A giver or recipient that does not exist yields
// domain.ErrNotFound.
func (r *CreditRepository) Create(ctx context.Context, credit *domain.Credit) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO credits (user_id, recipient_id, description, point, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		credit.UserID, credit.RecipientID, credit.Description, credit.Point, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert credit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get credit id: %w", err)
	}
	credit.ID = id
	credit.CreatedAt = now
	return nil
}

// List returns all credits, oldest first, with giver and recipient loaded.
func (r *CreditRepository) List(ctx context.Context) ([]domain.CreditWithUsers, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.recipient_id, c.description, c.point, c.created_at,
		        u.id, u.username, u.name, u.image_url,
		        p.id, p.username, p.name, p.image_url
		 FROM credits c
		 JOIN users u ON u.id = c.user_id
		 JOIN users p ON p.id = c.recipient_id
		 ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, fmt.Errorf("query credits: %w", err)
	}
	defer rows.Close()

	var credits []domain.CreditWithUsers
	for rows.Next() {
		var c domain.CreditWithUsers
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.RecipientID, &c.Description, &c.Point, &c.CreatedAt,
			&c.User.ID, &c.User.Username, &c.User.Name, &c.User.ImageURL,
			&c.Recipient.ID, &c.Recipient.Username, &c.Recipient.Name, &c.Recipient.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credits: %w", err)
	}
	return credits, nil
}

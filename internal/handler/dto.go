package handler

import (
	"time"

	"github.com/msomdec/thanku/internal/domain"
)

// UserDTO is the JSON representation of a user. The password hash never leaves the server.
type UserDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		ImageURL: u.ImageURL,
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// CreditDTO is the JSON representation of a credit.
type CreditDTO struct {
	User      UserDTO `json:"user"`
	Recipient UserDTO `json:"recipient"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
	Point     int     `json:"point"`
}

func toCreditDTOs(credits []domain.CreditWithUsers) []CreditDTO {
	dtos := make([]CreditDTO, len(credits))
	for i, c := range credits {
		dtos[i] = CreditDTO{
			User:      toUserDTO(&c.User),
			Recipient: toUserDTO(&c.Recipient),
			Message:   c.Description,
			Timestamp: c.CreatedAt.UTC().Format(time.RFC3339),
			Point:     c.Point,
		}
	}
	return dtos
}

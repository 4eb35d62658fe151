package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleIT    = "it"
)

func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleIT:
		return true
	}
	return false
}

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Role       string    `json:"role"` // user | admin | it
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

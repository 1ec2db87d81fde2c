package domain

import "time"

// User is an account record in the user store.
type User struct {
	Name      string
	Username  string
	Email     string
	Password  string
	CreatedAt time.Time
}

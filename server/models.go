package main

import "time"

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Skills     []string  `json:"skills"`
	LookingFor string    `json:"looking_for,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	Theme      string    `json:"theme"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Member is the public part of a user shown in the directory.
type Member struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Skills     []string `json:"skills"`
	LookingFor string   `json:"looking_for,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
}

// Request is a connection request between two users.
type Request struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"timestamp"`
}

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// RequestFilter narrows a request query. Empty fields do not filter.
type RequestFilter struct {
	From   string
	To     string
	Status string
}

// ProfileUpdate carries the fields of PATCH /api/me; nil means unchanged.
type ProfileUpdate struct {
	Name       *string
	Role       *string
	Skills     []string
	LookingFor *string
	Avatar     *string
	Theme      *string
}

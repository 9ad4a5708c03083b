package model

import "time"

// Author is a coach or trainer who builds quizzes.
type Author struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Member is a learner who takes quizzes.
type Member struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for author and member authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// MemberLoginResponse is returned after a successful member login.
type MemberLoginResponse struct {
	Token  string `json:"token"`
	Member Member `json:"member"`
}

// AuthorLoginResponse is returned after a successful author login.
type AuthorLoginResponse struct {
	Token  string `json:"token"`
	Author Author `json:"author"`
}

// CreateMemberRequest is the payload for registering a new member account.
type CreateMemberRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

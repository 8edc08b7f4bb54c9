package handler

import "time"

type SignInRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Role         string    `json:"role"`
	FirstName    string    `json:"first_name"`
}

type SignUpRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=256"`
	LastName        string `json:"last_name" validate:"required,max=256"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	DocNumber       string `json:"doc_number" validate:"required,max=256"`
	ManagerID       string `json:"manager_id" validate:"omitempty,max=450"`
	Role            string `json:"role" validate:"required"`
	PhoneNumber     string `json:"phone_number"`
}

type SignUpResponse struct {
	ConfirmationToken string `json:"confirmation_token"`
}

type UpdateUserRequest struct {
	UserID          string `json:"user_id" validate:"required"`
	FirstName       string `json:"first_name" validate:"required,max=256"`
	LastName        string `json:"last_name" validate:"required,max=256"`
	Email           string `json:"email" validate:"required,email"`
	DocNumber       string `json:"doc_number" validate:"required,max=256"`
	ManagerID       string `json:"manager_id" validate:"omitempty,max=450"`
	Role            string `json:"role" validate:"required"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type UpdateUserResponse struct{}

type DeleteUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type DeleteUserResponse struct{}

type SignOutRequest struct{}

type SignOutResponse struct {
	Success bool `json:"success"`
}

// RefreshRequest falls back to the refresh_token cookie when RefreshToken is empty.
type RefreshRequest struct {
	UserName     string `json:"user_name" validate:"required"`
	RefreshToken string `json:"refresh_token"`
}

type GetCurrentUserRequest struct{}

type ListUsersRequest struct{}

type UserResponse struct {
	UserID       string   `json:"user_id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email"`
	DocNumber    string   `json:"doc_number"`
	ManagerID    *string  `json:"manager_id,omitempty"`
	ManagerName  string   `json:"manager_name,omitempty"`
	PhoneNumbers []string `json:"phone_numbers"`
	Role         string   `json:"role"`
}

type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

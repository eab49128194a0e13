package model

type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Photo           string `json:"photo" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"-"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest carries the self-service editable fields. Password
// fields are deliberately absent; password changes go through their own route.
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Photo           *string `json:"photo" validate:"omitempty,max=255"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

type AdminCreateUserRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,user_role"`
}

type AdminUpdateUserRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Photo           *string `json:"photo" validate:"omitempty,max=255"`
	Role            *string `json:"role" validate:"omitempty,user_role"`
	Active          *bool   `json:"active"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

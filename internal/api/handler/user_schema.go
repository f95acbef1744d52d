package handler

import (
	"github.com/saasportal/admin-api/internal/core/domain"
)

type createUserRequest struct {
	FirstName      string      `json:"first_name" validate:"required"`
	LastName       string      `json:"last_name" validate:"required"`
	Email          string      `json:"email" validate:"required,email"`
	Role           domain.Role `json:"role" validate:"omitempty,oneof=admin manager user viewer"`
	Department     string      `json:"department"`
	Title          string      `json:"title"`
	Phone          string      `json:"phone"`
	SendInvitation bool        `json:"send_invitation"`
}

type updateUserRequest struct {
	FirstName  *string            `json:"first_name"`
	LastName   *string            `json:"last_name"`
	Email      *string            `json:"email" validate:"omitempty,email"`
	Role       *domain.Role       `json:"role" validate:"omitempty,oneof=admin manager user viewer"`
	Department *string            `json:"department"`
	Title      *string            `json:"title"`
	Phone      *string            `json:"phone"`
	Status     *domain.UserStatus `json:"status" validate:"omitempty,oneof=pending active inactive suspended"`
	Bio        *string            `json:"bio"`
}

type bulkUpdateRequest struct {
	UserIDs []string    `json:"user_ids" validate:"required,min=1"`
	Action  string      `json:"action" validate:"required,oneof=activate deactivate delete updateRole"`
	Role    domain.Role `json:"role" validate:"omitempty,oneof=admin manager user viewer"`
}

type acceptInvitationRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type assignRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=admin manager user viewer"`
}

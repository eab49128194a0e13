package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trosc-backend/internal/user/model"
	appErrors "trosc-backend/pkg/errors"
	"trosc-backend/pkg/utils"
)

// Admin-gated user CRUD. Role checks happen in middleware before any of
// these are reached.

func (s *UserService) ListUsers(ctx context.Context) ([]*model.UserResponse, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*model.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}

func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *UserService) CreateUser(ctx context.Context, request *model.AdminCreateUserRequest) (*model.UserResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if err := utils.ValidatePassword(request.Password); err != nil {
		return nil, appErrors.NewAppError("WEAK_PASSWORD", err.Error(), nil)
	}

	hashedPassword, err := utils.HashPassword(request.Password, s.config.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:           request.Name,
		Email:          request.Email,
		Role:           request.Role,
		PasswordHashed: hashedPassword,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID primitive.ObjectID, request *model.AdminUpdateUserRequest) (*model.UserResponse, error) {
	if request.Password != nil || request.PasswordConfirm != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR",
			"This route is not for password updates.", nil)
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	fields := bson.M{}
	if request.Name != nil {
		fields["name"] = *request.Name
	}
	if request.Email != nil {
		fields["email"] = *request.Email
	}
	if request.Photo != nil {
		fields["photo"] = *request.Photo
	}
	if request.Role != nil {
		fields["role"] = *request.Role
	}
	if request.Active != nil {
		fields["active"] = *request.Active
	}
	if len(fields) == 0 {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "No fields to update", nil)
	}

	user, err := s.repo.Update(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// DeleteUser hard-deletes the account. Unlike the self-service path this
// removes the document entirely.
func (s *UserService) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	return s.repo.Delete(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"trosc-backend/internal/config"
	"trosc-backend/internal/logger"
	"trosc-backend/internal/user/model"
	appErrors "trosc-backend/pkg/errors"
	"trosc-backend/pkg/utils"
)

// Repository is the subset of store operations the service needs. The mongo
// implementation lives in internal/user/repository.
type Repository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID primitive.ObjectID) (*model.User, error)
	GetAll(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, userID primitive.ObjectID, fields bson.M) (*model.User, error)
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string, changedAt time.Time) error
	UpdateLastLogin(ctx context.Context, userID primitive.ObjectID) error
	SetResetToken(ctx context.Context, userID primitive.ObjectID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID primitive.ObjectID) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, changedAt time.Time) (*model.User, error)
	Deactivate(ctx context.Context, userID primitive.ObjectID) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

// Mailer delivers transactional email.
type Mailer interface {
	SendWelcome(to, name string) error
	SendPasswordReset(to, name, resetURL string) error
}

type UserService struct {
	repo   Repository
	mailer Mailer
	config *config.Config
}

func NewService(repo Repository, mailer Mailer, cfg *config.Config) *UserService {
	return &UserService{
		repo:   repo,
		mailer: mailer,
		config: cfg,
	}
}

func (s *UserService) SignUp(ctx context.Context, request *model.SignupRequest) (*model.AuthResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if err := utils.ValidatePassword(request.Password); err != nil {
		return nil, appErrors.NewAppError("WEAK_PASSWORD", err.Error(), nil)
	}

	existingUser, err := s.repo.GetByEmail(ctx, request.Email)
	if err != nil && !errors.Is(err, appErrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, appErrors.ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password, s.config.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:           request.Name,
		Email:          request.Email,
		Photo:          request.Photo,
		Role:           model.RoleUser,
		PasswordHashed: hashedPassword,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Best effort: a failed welcome email never rolls back the account.
	go func(to, name string) {
		if err := s.mailer.SendWelcome(to, name); err != nil {
			logger.Warn("Failed to send welcome email",
				zap.String("email", to),
				zap.Error(err),
			)
		}
	}(user.Email, user.Name)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email),
	)

	return &model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, request *model.LoginRequest) (*model.AuthResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	// Unknown email, deactivated account and wrong password all collapse into
	// the same error so the response does not reveal which emails exist.
	user, err := s.repo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.ErrInvalidCredentials
	}

	if !utils.CheckPassword(user.PasswordHashed, request.Password) {
		return nil, appErrors.ErrInvalidCredentials
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("Failed to update last login",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err),
		)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

// ForgotPassword stores a hashed one-time reset token on the account and
// mails the plaintext. If delivery fails the stored token is rolled back so
// no valid-but-undelivered token lingers.
func (s *UserService) ForgotPassword(ctx context.Context, request *model.ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(request); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.repo.GetByEmail(ctx, request.Email)
	if err != nil {
		return err
	}

	plaintext, tokenHash, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.config.Reset.ResetTokenTTL())

	if err := s.repo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.config.Server.FrontendURL, plaintext)
	if err := s.mailer.SendPasswordReset(user.Email, user.Name, resetURL); err != nil {
		logger.Error("Failed to send password reset email",
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err),
		)
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			logger.Error("Failed to roll back reset token",
				zap.String("user_id", user.ID.Hex()),
				zap.Error(clearErr),
			)
		}
		return appErrors.ErrEmailDelivery
	}

	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, request *model.ResetPasswordRequest) (*model.AuthResponse, error) {
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

	// The lookup, the expiry check and the clearing of the token happen in a
	// single conditional update, so of two racing requests with the same
	// token exactly one succeeds. Backdating password_changed_at guarantees
	// it predates the token issued just below.
	tokenHash := utils.HashResetToken(request.Token)
	changedAt := time.Now().Add(-time.Second)

	user, err := s.repo.ConsumeResetToken(ctx, tokenHash, hashedPassword, changedAt)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	logger.Info("Password reset completed",
		zap.String("user_id", user.ID.Hex()),
	)

	return &model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, request *model.ChangePasswordRequest) (*model.AuthResponse, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if err := utils.ValidatePassword(request.NewPassword); err != nil {
		return nil, appErrors.NewAppError("WEAK_PASSWORD", err.Error(), nil)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHashed, request.CurrentPassword) {
		return nil, appErrors.ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(request.NewPassword, s.config.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := time.Now().Add(-time.Second)
	if err := s.repo.UpdatePassword(ctx, userID, hashedPassword, changedAt); err != nil {
		return nil, err
	}
	user.PasswordChangedAt = changedAt

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{User: user.ToResponse(), Token: token}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, request *model.UpdateProfileRequest) (*model.UserResponse, error) {
	if request.Password != nil || request.PasswordConfirm != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR",
			"This route is not for password updates. Please use /me/password.", nil)
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
	if len(fields) == 0 {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "No fields to update", nil)
	}

	user, err := s.repo.Update(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// DeactivateMe soft-deletes the calling user's account.
func (s *UserService) DeactivateMe(ctx context.Context, userID primitive.ObjectID) error {
	return s.repo.Deactivate(ctx, userID)
}

func (s *UserService) issueToken(user *model.User) (string, error) {
	token, err := utils.GenerateToken(
		user.ID.Hex(),
		user.Email,
		user.Role,
		s.config.JWT.Secret,
		s.config.JWT.ExpiresDays,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

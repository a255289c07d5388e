package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/pkg/jwt"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) error
	ResendVerification(ctx context.Context, input RegisterInput) error
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	Login(ctx context.Context, emailAddr, password string) (*LoginResult, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

var validate = validator.New()

type LoginResult struct {
	User  domain.User
	Token string
}

type AuthService struct {
	users      repository.UserRepository
	tokens     *jwt.Service
	sender     email.Sender
	logger     *logrus.Logger
	publicURL  string
	bcryptCost int
}

// NewAuthService builds verification links from publicURL.
func NewAuthService(
	users repository.UserRepository,
	tokens *jwt.Service,
	sender email.Sender,
	logger *logrus.Logger,
	publicURL string,
	bcryptCost int,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		sender:     sender,
		logger:     logger,
		publicURL:  strings.TrimRight(publicURL, "/"),
		bcryptCost: bcryptCost,
	}
}

// Register does not create the user. The pending registration travels
// inside a signed verification token that is emailed to the address.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	msg, err := s.pendingRegistration(ctx, input, "Verify your email")
	if err != nil {
		return err
	}
	if s.sender != nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		s.logger.WithError(err).WithField("email", msg.To).Warn("Failed to send verification email")
	}
	return nil
}

// ResendVerification signs a fresh pending registration for an address that
// has no account yet. Unlike Register, a delivery failure is returned.
func (s *AuthService) ResendVerification(ctx context.Context, input RegisterInput) error {
	msg, err := s.pendingRegistration(ctx, input, "Verify your email again")
	if err != nil {
		return err
	}
	if s.sender == nil {
		return errors.New("resend verification: no email sender configured")
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	s.logger.WithField("email", msg.To).Info("Verification email resent")
	return nil
}

func (s *AuthService) pendingRegistration(ctx context.Context, input RegisterInput, subject string) (email.Message, error) {
	name := strings.TrimSpace(input.Name)
	addr := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Struct(RegisterInput{Name: name, Email: addr, Password: input.Password}); err != nil {
		return email.Message{}, registrationError(err)
	}

	_, err := s.users.GetByEmail(ctx, addr)
	if err == nil {
		return email.Message{}, domain.ErrUserExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return email.Message{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return email.Message{}, err
	}

	token, err := s.tokens.GenerateVerificationToken(name, addr, string(hash))
	if err != nil {
		return email.Message{}, err
	}

	link := s.publicURL + "/auth/verify?token=" + url.QueryEscape(token)
	msg, err := email.VerificationMessage(addr, name, link, s.tokens.VerificationExpiry())
	if err != nil {
		return email.Message{}, err
	}
	msg.Subject = subject
	return msg, nil
}

func registrationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("body", err.Error())
	}
	switch fieldErrs[0].StructField() {
	case "Name":
		return domain.NewValidationError("name", "name is required")
	case "Email":
		return domain.NewValidationError("email", "email is not a valid address")
	default:
		return domain.NewValidationError("password", "password must be at least 6 characters")
	}
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.NewValidationError("token", "token is required")
	}

	claims, err := s.tokens.ValidateVerificationToken(token)
	if err != nil {
		s.logger.WithError(err).Debug("Verification token rejected")
		return nil, domain.ErrInvalidToken
	}

	user := &domain.User{
		Name:         claims.Name,
		Email:        claims.Email,
		PasswordHash: claims.PasswordHash,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User verified")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: *user, Token: token}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

var _ AuthUseCase = (*AuthService)(nil)

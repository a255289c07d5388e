package auth

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/pkg/jwt"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, addr string) (*domain.User, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newService(users *MockUserRepository, sender *MockSender) (*AuthService, *jwt.Service, *test.Hook) {
	tokens := jwt.NewService("test-secret-key-123456789", time.Hour, 15*time.Minute)
	logger, hook := test.NewNullLogger()
	return NewAuthService(users, tokens, sender, logger, "http://localhost:8080/", bcrypt.MinCost), tokens, hook
}

var linkToken = regexp.MustCompile(`/auth/verify\?token=([^"]+)"`)

func TestAuthService_RegisterThenVerify(t *testing.T) {
	users := &MockUserRepository{}
	sender := &MockSender{}
	svc, _, _ := newService(users, sender)

	users.On("GetByEmail", mock.Anything, "alice@flight.com").Return(nil, domain.ErrUserNotFound)

	var sent email.Message
	sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(email.Message)
	}).Return(nil)

	err := svc.Register(context.Background(), RegisterInput{Name: "Alice", Email: " Alice@Flight.com ", Password: "alice123"})
	require.NoError(t, err)
	assert.Equal(t, "alice@flight.com", sent.To)
	assert.Equal(t, email.TypeVerification, sent.Type)
	assert.Contains(t, sent.HTMLBody, "http://localhost:8080/auth/verify?token=")

	m := linkToken.FindStringSubmatch(sent.HTMLBody)
	require.Len(t, m, 2)
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@flight.com" && u.Name == "Alice" && u.IsVerified &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("alice123")) == nil
	})).Return(nil)

	user, err := svc.VerifyEmail(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	users.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newService(&MockUserRepository{}, &MockSender{})

	for _, in := range []RegisterInput{
		{Name: "", Email: "a@b.c", Password: "secret1"},
		{Name: "A", Email: "nope", Password: "secret1"},
		{Name: "A", Email: "a@b.c", Password: "123"},
	} {
		assert.ErrorIs(t, svc.Register(context.Background(), in), domain.ErrValidation)
	}
}

func TestAuthService_Register_UserExists(t *testing.T) {
	users := &MockUserRepository{}
	sender := &MockSender{}
	svc, _, _ := newService(users, sender)

	users.On("GetByEmail", mock.Anything, "alice@flight.com").Return(&domain.User{ID: 1}, nil)

	err := svc.Register(context.Background(), RegisterInput{Name: "Alice", Email: "alice@flight.com", Password: "alice123"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestAuthService_Register_EmailFailureIsLogged(t *testing.T) {
	users := &MockUserRepository{}
	sender := &MockSender{}
	svc, _, hook := newService(users, sender)

	users.On("GetByEmail", mock.Anything, "bob@flight.com").Return(nil, domain.ErrUserNotFound)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := svc.Register(context.Background(), RegisterInput{Name: "Bob", Email: "bob@flight.com", Password: "bobpass"})
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Failed to send verification email", hook.LastEntry().Message)
}

func TestAuthService_VerifyEmail_InvalidToken(t *testing.T) {
	users := &MockUserRepository{}
	svc, tokens, _ := newService(users, &MockSender{})

	_, err := svc.VerifyEmail(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	access, err := tokens.GenerateAccessToken(1, "a@b.c")
	require.NoError(t, err)
	_, err = svc.VerifyEmail(context.Background(), access)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.VerifyEmail(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_VerifyEmail_AlreadyVerified(t *testing.T) {
	users := &MockUserRepository{}
	svc, tokens, _ := newService(users, &MockSender{})

	token, err := tokens.GenerateVerificationToken("Alice", "alice@flight.com", "hash")
	require.NoError(t, err)
	users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserExists)

	_, err = svc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthService_Login(t *testing.T) {
	users := &MockUserRepository{}
	svc, tokens, _ := newService(users, &MockSender{})

	hash, err := bcrypt.GenerateFromPassword([]byte("alice123"), bcrypt.MinCost)
	require.NoError(t, err)

	users.On("GetByEmail", mock.Anything, "alice@flight.com").
		Return(&domain.User{ID: 7, Name: "Alice", Email: "alice@flight.com", PasswordHash: string(hash), IsVerified: true}, nil)
	users.On("GetByEmail", mock.Anything, "diana@flight.com").
		Return(&domain.User{ID: 8, Email: "diana@flight.com", PasswordHash: string(hash)}, nil)
	users.On("GetByEmail", mock.Anything, "ghost@flight.com").Return(nil, domain.ErrUserNotFound)

	res, err := svc.Login(context.Background(), "alice@flight.com", "alice123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.User.ID)
	claims, err := tokens.ValidateAccessToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	_, err = svc.Login(context.Background(), "alice@flight.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "diana@flight.com", "alice123")
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)

	_, err = svc.Login(context.Background(), "diana@flight.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "unverified status is only revealed with the right password")

	_, err = svc.Login(context.Background(), "ghost@flight.com", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthService_ResendVerification(t *testing.T) {
	users := &MockUserRepository{}
	sender := &MockSender{}
	svc, tokens, _ := newService(users, sender)

	users.On("GetByEmail", mock.Anything, "carol@flight.com").Return(nil, domain.ErrUserNotFound)

	var sent email.Message
	sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(email.Message)
	}).Return(nil)

	err := svc.ResendVerification(context.Background(), RegisterInput{Name: "Carol", Email: "Carol@Flight.com", Password: "carol123"})
	require.NoError(t, err)
	assert.Equal(t, "carol@flight.com", sent.To)
	assert.Equal(t, "Verify your email again", sent.Subject)

	m := linkToken.FindStringSubmatch(sent.HTMLBody)
	require.Len(t, m, 2)
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	claims, err := tokens.ValidateVerificationToken(token)
	require.NoError(t, err)
	assert.Equal(t, "carol@flight.com", claims.Email)
}

func TestAuthService_ResendVerification_ExistingAccount(t *testing.T) {
	users := &MockUserRepository{}
	sender := &MockSender{}
	svc, _, _ := newService(users, sender)

	users.On("GetByEmail", mock.Anything, "alice@flight.com").Return(&domain.User{ID: 1, IsVerified: true}, nil)

	err := svc.ResendVerification(context.Background(), RegisterInput{Name: "Alice", Email: "alice@flight.com", Password: "alice123"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestAuthService_ResendVerification_DeliveryFailureIsReturned(t *testing.T) {
	users := &MockUserRepository{}
	sender := &MockSender{}
	svc, _, _ := newService(users, sender)

	users.On("GetByEmail", mock.Anything, "bob@flight.com").Return(nil, domain.ErrUserNotFound)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := svc.ResendVerification(context.Background(), RegisterInput{Name: "Bob", Email: "bob@flight.com", Password: "bob1234"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.False(t, domain.IsBusinessError(err))
}

func TestAuthService_ResendVerification_Validation(t *testing.T) {
	svc, _, _ := newService(&MockUserRepository{}, &MockSender{})

	err := svc.ResendVerification(context.Background(), RegisterInput{Name: "A", Email: "a@b.c", Password: "123"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

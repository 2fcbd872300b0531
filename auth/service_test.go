package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mattfehr/volleyball-rotation-tracker/auth"
	"github.com/mattfehr/volleyball-rotation-tracker/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// reverseHasher "hashes" by reversing the password.
type reverseHasher struct{}

func (reverseHasher) Hash(password string) (string, error) {
	r := []rune(password)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return "rev:" + string(r), nil
}

func (h reverseHasher) Compare(hash, password string) (bool, error) {
	if !strings.HasPrefix(hash, "rev:") {
		return false, domain.UnexpectedPasswordHashComparisonError
	}
	hashed, _ := h.Hash(password)
	return hashed == hash, nil
}

type stampTokens struct{}

func (stampTokens) Generate(id string, now time.Time) (string, error) {
	return "token-for-" + id, nil
}

func (stampTokens) Verify(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "token-for-")
	if !ok {
		return "", domain.ErrCorruptedToken
	}
	return id, nil
}

func TestSignup(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description   string
		username      string
		password      string
		expectedError error
	}{
		{"username too short", "ab", "password1", auth.ErrInvalidUsernameFormat},
		{"username too long", strings.Repeat("a", 21), "password1", auth.ErrInvalidUsernameFormat},
		{"uppercase username", "Coach", "password1", auth.ErrInvalidUsernameFormat},
		{"username with spaces", "coach kim", "password1", auth.ErrInvalidUsernameFormat},
		{"short password", "coach_kim", "1234567", auth.ErrWeakPassword},
		{"short password counted in runes", "coach_kim", "éééé", auth.ErrWeakPassword},
		{"long password", "coach_kim", strings.Repeat("p", auth.MaxPasswordLength+1), auth.ErrPasswordTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			repo := new(MockUserRepo)
			service := auth.NewService(repo, reverseHasher{}, stampTokens{})

			_, err := service.Signup(context.Background(), tc.username, tc.password)

			assert.ErrorIs(t, err, tc.expectedError)
			repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("success stores the hash and returns a token for the new id", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("CreateUser", mock.Anything, "coach_kim", "rev:4321drowssap").Return("user-1", nil)
		service := auth.NewService(repo, reverseHasher{}, stampTokens{})

		token, err := service.Signup(context.Background(), "coach_kim", "password1234")

		require.NoError(t, err)
		assert.Equal(t, "token-for-user-1", token)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate username passes through", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("CreateUser", mock.Anything, "coach_kim", mock.Anything).Return("", domain.ErrDuplicateUsername)
		service := auth.NewService(repo, reverseHasher{}, stampTokens{})

		_, err := service.Signup(context.Background(), "coach_kim", "password1234")

		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	stored := domain.User{Id: "user-9", Username: "coach_kim", PasswordHash: "rev:4321drowssap"}

	testCases := []struct {
		description   string
		repoUser      domain.User
		repoErr       error
		password      string
		expectedToken string
		expectedError error
	}{
		{"correct password", stored, nil, "password1234", "token-for-user-9", nil},
		{"wrong password", stored, nil, "password9999", "", auth.ErrIncorrectPassword},
		{"unknown user", domain.User{}, domain.ErrUserNotFound, "password1234", "", domain.ErrUserNotFound},
		{"corrupted hash", domain.User{Id: "user-9", PasswordHash: "???"}, nil, "password1234", "", domain.UnexpectedPasswordHashComparisonError},
		{"timeout", domain.User{}, context.DeadlineExceeded, "password1234", "", context.DeadlineExceeded},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			repo := new(MockUserRepo)
			repo.On("GetUserByUsername", mock.Anything, "coach_kim").Return(tc.repoUser, tc.repoErr)
			service := auth.NewService(repo, reverseHasher{}, stampTokens{})

			token, err := service.Login(context.Background(), "coach_kim", tc.password)

			assert.ErrorIs(t, err, tc.expectedError)
			assert.Equal(t, tc.expectedToken, token)
			repo.AssertExpectations(t)
		})
	}
}

func TestMeAndTokens(t *testing.T) {
	t.Parallel()
	repo := new(MockUserRepo)
	repo.On("GetUserById", mock.Anything, "user-3").Return(domain.User{Id: "user-3", Username: "libero"}, nil)
	service := auth.NewService(repo, reverseHasher{}, stampTokens{})

	token, err := service.GenerateToken("user-3")
	require.NoError(t, err)

	id, err := service.VerifyToken(token)
	require.NoError(t, err)

	user, err := service.Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "libero", user.Username)

	_, err = service.VerifyToken("garbage")
	assert.ErrorIs(t, err, domain.ErrCorruptedToken)
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/jwt"
	"queueless/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 11
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

type mockMembershipRepo struct {
	mock.Mock
}

func (m *mockMembershipRepo) ListByUser(ctx context.Context, userID int64) ([]domain.CompanyMembership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompanyMembership), args.Error(1)
}

type failingRevoker struct{}

func (failingRevoker) Revoke(context.Context, string, time.Time) error {
	return errors.New("redis down")
}

func newTestService() (*Service, *mockUserRepo, *mockMembershipRepo, *jwt.Service, *repository.MemorySessionStore) {
	users := new(mockUserRepo)
	members := new(mockMembershipRepo)
	tokens := jwt.New("test-secret", time.Hour)
	sessions := repository.NewMemorySessionStore()
	return NewService(users, members, tokens, sessions, zerolog.Nop()), users, members, tokens, sessions
}

func TestService_Register_Success(t *testing.T) {
	svc, users, _, tokens, _ := newTestService()
	ctx := context.Background()

	users.On("ExistsByEmail", ctx, "anna@example.com", int64(0)).Return(false, nil)
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	sess, err := svc.Register(ctx, RegisterRequest{Name: "Anna", Email: "anna@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, sess.Role)
	assert.NotEqual(t, "secret-pass", sess.User.PasswordHash)
	assert.True(t, CheckPassword(sess.User.PasswordHash, "secret-pass"))

	claims, err := tokens.ValidateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(11), claims.UserID)
	assert.Equal(t, string(domain.RoleUser), claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestService_Register_EmailTaken(t *testing.T) {
	svc, users, _, _, _ := newTestService()
	ctx := context.Background()

	users.On("ExistsByEmail", ctx, "anna@example.com", int64(0)).Return(true, nil)

	_, err := svc.Register(ctx, RegisterRequest{Name: "Anna", Email: "anna@example.com", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_Validation(t *testing.T) {
	svc, users, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "nope", Password: "short"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	users.AssertExpectations(t)
}

func TestService_Login(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)
	user := &domain.User{ID: 5, Email: "owner@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		password string
		members  []domain.CompanyMembership
		wantRole domain.Role
		wantErr  error
	}{
		{"owner", "secret-pass", []domain.CompanyMembership{{Role: domain.MemberRoleOwner, IsActive: true}}, domain.RoleOwner, nil},
		{"worker", "secret-pass", []domain.CompanyMembership{{Role: domain.MemberRoleWorker, IsActive: true}}, domain.RoleWorker, nil},
		{"inactive membership", "secret-pass", []domain.CompanyMembership{{Role: domain.MemberRoleOwner, IsActive: false}}, domain.RoleUser, nil},
		{"wrong password", "nope-nope", nil, "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, members, _, _ := newTestService()
			ctx := context.Background()
			users.On("GetByEmail", ctx, user.Email).Return(user, nil)
			members.On("ListByUser", ctx, user.ID).Return(tt.members, nil)

			sess, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, sess.Role)
		})
	}
}

func TestService_Login_UnknownEmail(t *testing.T) {
	svc, users, _, _, _ := newTestService()
	ctx := context.Background()
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_PlatformAdmin(t *testing.T) {
	svc, users, members, _, _ := newTestService()
	ctx := context.Background()
	hash, _ := HashPassword("admin-pass")
	admin := &domain.User{ID: 1, Email: "admin@example.com", PasswordHash: hash, PlatformRole: domain.PlatformRoleAdmin}
	users.On("GetByEmail", ctx, admin.Email).Return(admin, nil)
	members.On("ListByUser", ctx, admin.ID).Return([]domain.CompanyMembership{{Role: domain.MemberRoleOwner, IsActive: true}}, nil)

	sess, err := svc.Login(ctx, LoginRequest{Email: admin.Email, Password: "admin-pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlatformAdmin, sess.Role)
}

func TestService_Logout_RevokesSession(t *testing.T) {
	svc, _, _, tokens, sessions := newTestService()
	ctx := context.Background()

	_, jti, exp, err := tokens.GenerateToken(jwt.Session{UserID: 3, Email: "x@example.com", Role: "USER"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, jti, exp))
	revoked, err := sessions.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.NoError(t, svc.Logout(ctx, "", exp), "token without id")
}

func TestService_Logout_StoreFailure(t *testing.T) {
	svc := NewService(new(mockUserRepo), new(mockMembershipRepo), jwt.New("s", time.Hour), failingRevoker{}, zerolog.Nop())

	err := svc.Logout(context.Background(), "abc", time.Now().Add(time.Hour))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestService_Me(t *testing.T) {
	svc, users, members, _, _ := newTestService()
	ctx := context.Background()
	users.On("GetByID", ctx, int64(4)).Return(&domain.User{ID: 4, Name: "Wes"}, nil)
	members.On("ListByUser", ctx, int64(4)).Return(nil, nil)

	me, err := svc.Me(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, me.Role)
	assert.NotNil(t, me.Memberships)

	users.On("GetByID", ctx, int64(99)).Return(nil, gorm.ErrRecordNotFound)
	_, err = svc.Me(ctx, 99)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

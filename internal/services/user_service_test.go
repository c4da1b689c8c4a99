package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.StatusCode)
}

func TestRegister_HashesAndRunsHooks(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 10
		}).Return(nil)

	hooked := make(chan *models.User, 1)
	hook := func(_ context.Context, u *models.User) error {
		hooked <- u
		return fmt.Errorf("mail provider down")
	}

	svc := NewUserService(repo, testConfig(), hook)
	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, int64(10), user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("s3cret", user.PasswordHash))

	select {
	case got := <-hooked:
		assert.Equal(t, "alice@example.com", got.Email)
	case <-time.After(2 * time.Second):
		t.Fatal("post-commit hook did not run")
	}
	repo.AssertExpectations(t)
}

func TestRegister_PanickingHookDoesNotAffectRegistration(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByUsername", mock.Anything, "bob").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	after := make(chan struct{}, 1)
	svc := NewUserService(repo, testConfig(),
		func(context.Context, *models.User) error { panic("nil template") },
		func(context.Context, *models.User) error { after <- struct{}{}; return nil },
	)

	_, err := svc.Register(context.Background(), "bob", "bob@example.com", "s3cret")
	require.NoError(t, err)

	select {
	case <-after:
	case <-time.After(2 * time.Second):
		t.Fatal("second hook did not run")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)

	svc := NewUserService(repo, testConfig())
	_, err := svc.Register(context.Background(), "alice", "a@example.com", "pw")

	requireStatus(t, err, http.StatusConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_LostRaceIsConflict(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("user: %w", utils.ErrConflict))

	hookRan := false
	svc := NewUserService(repo, testConfig(), func(context.Context, *models.User) error {
		hookRan = true
		return nil
	})
	_, err := svc.Register(context.Background(), "alice", "a@example.com", "pw")

	requireStatus(t, err, http.StatusConflict)
	assert.False(t, hookRan)
}

func TestRegister_PersistenceFailure(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("disk full"))

	_, err := NewUserService(repo, testConfig()).Register(context.Background(), "alice", "a@example.com", "pw")
	requireStatus(t, err, http.StatusInternalServerError)
}

func TestGetUser(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1, Username: "alice"}, nil)
	repo.On("GetByID", mock.Anything, int64(2)).Return(nil, nil)
	svc := NewUserService(repo, testConfig())

	u, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Get(context.Background(), 2)
	requireStatus(t, err, http.StatusNotFound)
}

func TestDeleteUser_OwnerOrAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)
	repo.On("Delete", mock.Anything, int64(3)).Return(utils.ErrNotFound)
	svc := NewUserService(repo, testConfig())
	ctx := context.Background()

	owner := &models.Claims{Subject: "1"}
	stranger := &models.Claims{Subject: "2"}
	admin := &models.Claims{Subject: "9", Custom: map[string]any{models.ClaimIsAdmin: true}}

	assert.ErrorIs(t, svc.Delete(ctx, stranger, 1), utils.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, nil, 1), utils.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, 1))
	requireStatus(t, svc.Delete(ctx, admin, 3), http.StatusNotFound)

	repo.AssertNumberOfCalls(t, "Delete", 2)
}

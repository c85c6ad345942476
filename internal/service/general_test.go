package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
)

func TestRegister(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	issued := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	res, err := s.Register(ctx, " Taro ", "Taro@Example.com ", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Taro", res.User.Name)
	assert.Equal(t, "taro@example.com", res.User.Email)
	assert.True(t, res.ExpiresAt.Equal(issued.Add(24*time.Hour)))

	stored := db.User{}
	require.NoError(t, s.db.First(&stored, res.User.ID).Error)
	assert.NotEqual(t, "password123", stored.Password)

	_, err = s.Register(ctx, "Other", "taro@example.com", "password456")
	assert.Equal(t, ErrEmailTaken, err)
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func TestLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	registered := mustRegister(t, s, "hanako@example.com")

	issued := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(ctx, "hanako@example.com", "nope")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := s.Login(ctx, "nobody@example.com", "password123")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("success revokes previous tokens", func(t *testing.T) {
		res, err := s.Login(ctx, "HANAKO@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, res.User.ID)
		assert.NotEqual(t, registered.Token, res.Token)
		assert.True(t, res.ExpiresAt.Equal(issued.Add(24*time.Hour)))

		var count int64
		require.NoError(t, s.db.Model(&db.Token{}).Where("user_id = ?", res.User.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		_, err = s.Authenticate(ctx, registered.Token)
		assert.Equal(t, ErrUnauthenticated, err)
	})
}

func TestAuthenticateExpiry(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	issued := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	mustRegister(t, s, "jiro@example.com")
	res, err := s.Login(ctx, "jiro@example.com", "password123")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(24*time.Hour - time.Second) }
	user, err := s.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "jiro@example.com", user.Email)

	s.now = func() time.Time { return issued.Add(24 * time.Hour) }
	_, err = s.Authenticate(ctx, res.Token)
	assert.Equal(t, ErrUnauthenticated, err)

	_, err = s.Authenticate(ctx, "")
	assert.Equal(t, ErrUnauthenticated, err)
	_, err = s.Authenticate(ctx, "not-a-token")
	assert.Equal(t, ErrUnauthenticated, err)
}

func TestLogout(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	res := mustRegister(t, s, "saburo@example.com")
	user, err := s.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, user))
	_, err = s.Authenticate(ctx, res.Token)
	assert.Equal(t, ErrUnauthenticated, err)

	assert.NoError(t, s.Logout(ctx, nil))
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/geocode"
)

const defaultBcryptCost = 14

var (
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthorized, "invalid email or password")
	ErrUnauthenticated    = apperr.New(apperr.CodeUnauthorized, "authentication required")
	ErrEmailTaken         = apperr.New(apperr.CodeConflict, "email is already registered")
)

type (
	Geocoder interface {
		Geocode(ctx context.Context, address string) (geocode.Location, error)
	}

	General struct {
		db         *gorm.DB
		geocoder   Geocoder
		logger     *zap.SugaredLogger
		tokenTTL   time.Duration
		bcryptCost int
		now        func() time.Time
	}

	AuthResult struct {
		Token     string
		ExpiresAt time.Time
		User      db.User
	}
)

func NewGeneral(conn *gorm.DB, geocoder Geocoder, cfg *config.Config, l *zap.SugaredLogger) *General {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cost := cfg.BcryptCost
	if cost <= 0 {
		cost = defaultBcryptCost
	}
	return &General{
		db:         conn,
		geocoder:   geocoder,
		logger:     l,
		tokenTTL:   ttl,
		bcryptCost: cost,
		now:        time.Now,
	}
}

// Register creates the user and issues a token with the same lifetime as Login.
func (s *General) Register(ctx context.Context, name, email, pass string) (*AuthResult, error) {
	email = normalizeEmail(email)
	hash, err := s.bcryptGen(pass)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}

	var result *AuthResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count users by email")
		}
		if count > 0 {
			return ErrEmailTaken
		}

		user := db.User{
			Name:     strings.TrimSpace(name),
			Email:    email,
			Password: hash,
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return errors.Wrap(err, "create user")
		}

		token, err := s.issueToken(tx, &user)
		if err != nil {
			return err
		}
		result = &AuthResult{
			Token:     token.Token,
			ExpiresAt: token.ExpiresAt,
			User:      user,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("user registered", "user_id", result.User.ID)
	return result, nil
}

// Login replaces every token of the user with a single fresh one.
func (s *General) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	user := db.User{}
	res := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(res.Error, "find user")
	}

	if err := s.bcryptCheck(user.Password, pass); err != nil {
		return nil, ErrInvalidCredentials
	}

	var token *db.Token
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&db.Token{}).Error; err != nil {
			return errors.Wrap(err, "revoke tokens")
		}
		var err error
		token, err = s.issueToken(tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      user,
	}, nil
}

// Logout revokes all tokens of the user. A nil user is a no-op.
func (s *General) Logout(ctx context.Context, user *db.User) error {
	if user == nil {
		return nil
	}
	res := s.db.WithContext(ctx).Where("user_id = ?", user.ID).Delete(&db.Token{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "revoke tokens")
	}
	return nil
}

// Authenticate resolves a bearer token to its owner. Unknown and expired
// tokens yield ErrUnauthenticated.
func (s *General) Authenticate(ctx context.Context, token string) (*db.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	model := db.Token{}
	res := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&model)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, errors.Wrap(res.Error, "find token")
	}
	if !model.ExpiresAt.After(s.now()) {
		return nil, ErrUnauthenticated
	}

	return &model.User, nil
}

func (s *General) issueToken(tx *gorm.DB, user *db.User) (*db.Token, error) {
	model := db.Token{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := tx.Create(&model).Error; err != nil {
		return nil, errors.Wrap(err, "create token")
	}
	return &model, nil
}

func (s *General) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), s.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *General) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.CodeNotFound, err, message)
	}
	return errors.Wrap(err, message)
}

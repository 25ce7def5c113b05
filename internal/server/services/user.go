package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/server/auth"
	"github.com/dmitrijs2005/govkeeper/internal/server/config"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/govkeeper/internal/server/tokenledger"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles owner registration, login, and balance queries.
// Registration doubles as user-record initialization: it creates the
// per-owner counters every deposit operation relies on.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user record with zeroed deposit counters.
func (s *UserService) Register(ctx context.Context, owner, password string) (*models.User, error) {
	if owner == "" || password == "" {
		return nil, common.ErrorUnauthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user := &models.User{Owner: owner, PasswordHash: hash}
	if err := s.repomanager.Users(s.db).Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and mints an access token carrying the owner
// identity.
func (s *UserService) Login(ctx context.Context, owner, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).Get(ctx, owner)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", common.ErrorUnauthorized
	}
	token, err := auth.GenerateToken(user.Owner, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Get returns the owner's user record.
func (s *UserService) Get(ctx context.Context, owner string) (*models.User, error) {
	return s.repomanager.Users(s.db).Get(ctx, owner)
}

// Balances returns the owner's non-zero token balances.
func (s *UserService) Balances(ctx context.Context, owner string) (map[tokenledger.Asset]uint64, error) {
	return s.repomanager.Tokens(s.db).Balances(ctx, owner)
}

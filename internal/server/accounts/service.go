// Package accounts handles account pairing and session tokens. A device
// pairs by name and passphrase; the first pairing creates the account, later
// ones must present the same passphrase.
package accounts

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"habitsync/internal/common"
	"habitsync/internal/logging"
	"habitsync/internal/server/auth"
	"habitsync/internal/server/config"
	"habitsync/internal/server/refreshtokens"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	logger                       logging.Logger
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		logger:                       logger.With("module", "accounts"),
	}
}

// SignIn authenticates a device against an account, creating the account on
// first use. The device id is only logged; sessions are account-scoped.
func (s *Service) SignIn(ctx context.Context, name, passphrase, deviceID string) (*TokenPair, error) {

	account, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInternal
		}
		account, err = s.register(ctx, name, passphrase)
		if err != nil {
			return nil, common.ErrInternal
		}
		s.logger.Info(ctx, "account created", "account", name, "device", deviceID)
	} else {
		if bcrypt.CompareHashAndPassword(account.PassphraseHash, []byte(passphrase)) != nil {
			return nil, common.ErrUnauthorized
		}
		s.logger.Info(ctx, "device paired", "account", name, "device", deviceID)
	}

	return s.issueTokens(ctx, account)
}

// Refresh rotates a refresh token into a new pair. Expired or unknown tokens
// are rejected as unauthorized.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {

	stored, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, common.ErrUnauthorized
	}

	account, err := s.repo.GetByID(ctx, stored.AccountID)
	if err != nil {
		return nil, common.ErrInternal
	}

	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, common.ErrInternal
	}

	return s.issueTokens(ctx, account)
}

// VerifyAccessToken returns the account id carried by a valid access token.
func (s *Service) VerifyAccessToken(tokenString string) (string, error) {
	return auth.GetAccountIDFromToken(tokenString, s.jwtSecret)
}

func (s *Service) register(ctx context.Context, name, passphrase string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Account{Name: name, PassphraseHash: hash})
}

func (s *Service) issueTokens(ctx context.Context, account *Account) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(account.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}

	err = s.refreshTokenRepo.Create(ctx, account.ID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

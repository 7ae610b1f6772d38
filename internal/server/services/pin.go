// Package services contains server-side business logic. This file implements
// PinService, the single owner of the PIN hash: verification, rotation and
// out-of-band provisioning, plus the unlock tokens handed out on success.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes; longer PINs are refused instead of
// being silently truncated.
const maxPinLen = 72

type PinService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cost        int
	tokenSecret []byte
	tokenTTL    time.Duration
}

func NewPinService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *PinService {
	cost := cfg.PinHashCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PinService{
		db:          db,
		repomanager: m,
		cost:        cost,
		tokenSecret: []byte(cfg.SecretKey),
		tokenTTL:    cfg.UnlockTokenValidityDuration,
	}
}

// Verify reports whether candidate matches the stored hash.
//
// Errors: ErrMalformedInput for an empty or over-long candidate (checked before
// any storage or hashing work), ErrNotConfigured when no hash is stored and
// ErrStorageUnavailable when the row cannot be read or holds something bcrypt
// does not recognise. A wrong PIN is (false, nil).
func (s *PinService) Verify(ctx context.Context, candidate string) (bool, error) {
	if candidate == "" || len(candidate) > maxPinLen {
		return false, common.ErrMalformedInput
	}

	hash, err := s.storedHash(ctx)
	if err != nil {
		return false, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: unreadable stored hash: %v", common.ErrStorageUnavailable, err)
	}
}

// Rotate replaces the stored hash after re-verifying current. The update is a
// single statement issued last; on any failure the old hash stays in place.
// Two concurrent rotations both passing verification resolve as
// last-writer-wins.
func (s *PinService) Rotate(ctx context.Context, current, newPin string) error {
	if current == "" || strings.TrimSpace(newPin) == "" || len(newPin) > maxPinLen {
		return common.ErrMalformedInput
	}

	ok, err := s.Verify(ctx, current)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrAuthenticationFailed
	}

	hash, err := s.hash(newPin)
	if err != nil {
		return err
	}

	repo := s.repomanager.Settings(s.db)
	if err := repo.UpdatePinHash(ctx, common.SettingsID, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNotConfigured
		}
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

// Provision stores a hash of pin regardless of the current state. It is the
// only way out of the not-configured state and is reachable from the
// provisioning CLI only.
func (s *PinService) Provision(ctx context.Context, pin string) error {
	if strings.TrimSpace(pin) == "" || len(pin) > maxPinLen {
		return common.ErrMalformedInput
	}

	hash, err := s.hash(pin)
	if err != nil {
		return err
	}

	repo := s.repomanager.Settings(s.db)
	if err := repo.UpsertPinHash(ctx, common.SettingsID, hash); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

// Hash returns a fresh bcrypt hash of pin with the configured cost.
func (s *PinService) Hash(pin string) (string, error) {
	if strings.TrimSpace(pin) == "" || len(pin) > maxPinLen {
		return "", common.ErrMalformedInput
	}
	return s.hash(pin)
}

// IssueUnlockToken mints a short-lived token after a successful Verify.
func (s *PinService) IssueUnlockToken() (string, error) {
	tok, err := auth.GenerateToken(s.tokenSecret, s.tokenTTL)
	if err != nil {
		return "", common.ErrorInternal
	}
	return tok, nil
}

// CheckUnlockToken validates a token previously issued by IssueUnlockToken.
func (s *PinService) CheckUnlockToken(token string) error {
	if token == "" {
		return common.ErrInvalidToken
	}
	return auth.ValidateToken(token, s.tokenSecret)
}

// --- helpers below ---

func (s *PinService) storedHash(ctx context.Context) (string, error) {
	repo := s.repomanager.Settings(s.db)
	setting, err := repo.Get(ctx, common.SettingsID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrNotConfigured
		}
		return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if setting.PinHash == "" {
		return "", common.ErrNotConfigured
	}
	return setting.PinHash, nil
}

func (s *PinService) hash(pin string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.ErrMalformedInput
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return string(h), nil
}

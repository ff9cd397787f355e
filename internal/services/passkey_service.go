package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/cache"
	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/pkg/crypto"
	apperrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/metrics"
)

const (
	passkeyBytes = 16

	// plaintextTTL bounds how long just-created passkey plaintexts stay in
	// the lookaside cache for admin redisplay. The cache is advisory only:
	// losing it never affects verification, which always runs against the
	// stored hashes.
	plaintextTTL = time.Hour

	passkeyCachePrefix = "passkey:plain:"
)

// PasskeyService verifies shared access codes by scanning stored bcrypt
// hashes. Passkeys are not tied to a login identity, so verification has to
// try every stored hash until one matches.
type PasskeyService struct {
	db        *gorm.DB
	lookaside cache.Store
}

// NewPasskeyService constructs a PasskeyService. The lookaside store is
// optional; without it plaintext redisplay is simply unavailable.
func NewPasskeyService(db *gorm.DB, lookaside cache.Store) (*PasskeyService, error) {
	if db == nil {
		return nil, errors.New("passkey service: db is required")
	}
	return &PasskeyService{db: db, lookaside: lookaside}, nil
}

// GeneratePasskey returns a fresh random passkey in plaintext. Callers hash
// it before persisting.
func (s *PasskeyService) GeneratePasskey() (string, error) {
	return crypto.GenerateToken(passkeyBytes)
}

// VerifyUniversityPasskey resolves the university whose stored hash matches
// the candidate passkey.
func (s *PasskeyService) VerifyUniversityPasskey(ctx context.Context, candidate string) (*models.University, error) {
	var universities []models.University
	if err := s.db.WithContext(ctx).Find(&universities).Error; err != nil {
		return nil, fmt.Errorf("passkey service: load universities: %w", err)
	}

	hashes := make([]string, len(universities))
	for i := range universities {
		hashes[i] = universities[i].PasskeyHash
	}

	idx := matchSecret(candidate, hashes)
	if idx < 0 {
		metrics.PasskeyChecks.WithLabelValues("miss").Inc()
		return nil, apperrors.ErrInvalidPasskey
	}

	metrics.PasskeyChecks.WithLabelValues("match").Inc()
	return &universities[idx], nil
}

// VerifyCompanyInvite resolves the company invite whose stored hash matches
// the candidate passkey.
func (s *PasskeyService) VerifyCompanyInvite(ctx context.Context, candidate string) (*models.CompanyInvite, error) {
	var invites []models.CompanyInvite
	if err := s.db.WithContext(ctx).Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("passkey service: load invites: %w", err)
	}

	hashes := make([]string, len(invites))
	for i := range invites {
		hashes[i] = invites[i].PasskeyHash
	}

	idx := matchSecret(candidate, hashes)
	if idx < 0 {
		metrics.PasskeyChecks.WithLabelValues("miss").Inc()
		return nil, apperrors.ErrInvalidPasskey
	}

	metrics.PasskeyChecks.WithLabelValues("match").Inc()
	return &invites[idx], nil
}

// RememberPlaintext stashes a just-created passkey plaintext keyed by its
// hash so admin listings can echo it back briefly.
func (s *PasskeyService) RememberPlaintext(ctx context.Context, hash, plaintext string) {
	if s.lookaside == nil || hash == "" || plaintext == "" {
		return
	}
	_ = s.lookaside.Set(ctx, passkeyCachePrefix+hash, []byte(plaintext), plaintextTTL)
}

// RecallPlaintext returns the cached plaintext for a hash when still present.
func (s *PasskeyService) RecallPlaintext(ctx context.Context, hash string) (string, bool) {
	if s.lookaside == nil || hash == "" {
		return "", false
	}
	value, ok, err := s.lookaside.Get(ctx, passkeyCachePrefix+hash)
	if err != nil || !ok {
		return "", false
	}
	return string(value), true
}

// matchSecret returns the index of the first hash the candidate matches, or
// -1 when the scan exhausts every hash. Isolated so the scan strategy can be
// swapped without touching the callers.
func matchSecret(candidate string, hashes []string) int {
	if candidate == "" {
		return -1
	}
	for i, hash := range hashes {
		if hash == "" {
			continue
		}
		if crypto.VerifyPassword(hash, candidate) {
			return i
		}
	}
	return -1
}

package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newPinService(t *testing.T, repo *fakeSettingsRepo) *PinService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		UnlockTokenValidityDuration: time.Minute,
		PinHashCost:                 bcrypt.MinCost,
	}
	return NewPinService(nil, &fakeRepoManager{s: repo}, cfg)
}

func mustHash(t *testing.T, pin string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestVerify_CorrectAndWrong(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	s := newPinService(t, repo)
	before := repo.hash()

	ok, err := s.Verify(context.Background(), "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(context.Background(), "4321")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, before, repo.hash(), "verify must not mutate the stored hash")
}

func TestVerify_MalformedInputSkipsStorage(t *testing.T) {
	repo := newFakeSettingsRepo("")
	repo.getErr = errors.New("must not be called")
	s := newPinService(t, repo)

	_, err := s.Verify(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrMalformedInput)

	_, err = s.Verify(context.Background(), strings.Repeat("9", 73))
	assert.ErrorIs(t, err, common.ErrMalformedInput)
}

func TestVerify_NotConfigured(t *testing.T) {
	t.Run("empty hash", func(t *testing.T) {
		s := newPinService(t, newFakeSettingsRepo(""))
		_, err := s.Verify(context.Background(), "1234")
		assert.ErrorIs(t, err, common.ErrNotConfigured)
	})

	t.Run("missing row", func(t *testing.T) {
		s := newPinService(t, &fakeSettingsRepo{rows: map[int64]string{}})
		_, err := s.Verify(context.Background(), "1234")
		assert.ErrorIs(t, err, common.ErrNotConfigured)
	})
}

func TestVerify_StorageUnavailable(t *testing.T) {
	t.Run("read failure", func(t *testing.T) {
		repo := newFakeSettingsRepo(mustHash(t, "1234"))
		repo.getErr = errors.New("db error: connection refused")
		s := newPinService(t, repo)

		_, err := s.Verify(context.Background(), "1234")
		assert.ErrorIs(t, err, common.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, common.ErrNotConfigured)
	})

	t.Run("unparsable hash", func(t *testing.T) {
		s := newPinService(t, newFakeSettingsRepo("plaintext-1234"))
		_, err := s.Verify(context.Background(), "1234")
		assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	})
}

func TestRotate_Success(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	s := newPinService(t, repo)
	ctx := context.Background()

	require.NoError(t, s.Rotate(ctx, "1234", "5678"))

	ok, err := s.Verify(ctx, "1234")
	require.NoError(t, err)
	assert.False(t, ok, "old PIN still accepted")

	ok, err = s.Verify(ctx, "5678")
	require.NoError(t, err)
	assert.True(t, ok, "new PIN rejected")
}

func TestRotate_WrongCurrentLeavesHash(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	s := newPinService(t, repo)
	before := repo.hash()

	err := s.Rotate(context.Background(), "0000", "5678")
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
	assert.Equal(t, before, repo.hash())
	assert.Zero(t, repo.updates)
}

func TestRotate_MalformedInput(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	s := newPinService(t, repo)

	for _, tc := range []struct{ cur, next string }{
		{"", "5678"},
		{"1234", ""},
		{"1234", "   "},
		{"1234", strings.Repeat("1", 73)},
	} {
		err := s.Rotate(context.Background(), tc.cur, tc.next)
		assert.ErrorIs(t, err, common.ErrMalformedInput, "cur=%q next=%q", tc.cur, tc.next)
	}
	assert.Zero(t, repo.updates)
}

func TestRotate_NotConfigured(t *testing.T) {
	repo := newFakeSettingsRepo("")
	s := newPinService(t, repo)

	err := s.Rotate(context.Background(), "1234", "5678")
	assert.ErrorIs(t, err, common.ErrNotConfigured)
	assert.Equal(t, "", repo.hash())
}

func TestRotate_WriteFailureKeepsOldHash(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	repo.updErr = errors.New("db error: timeout")
	s := newPinService(t, repo)
	before := repo.hash()

	err := s.Rotate(context.Background(), "1234", "5678")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.Equal(t, before, repo.hash())

	ok, err := s.Verify(context.Background(), "1234")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRotate_RowVanishedBetweenReadAndWrite(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	s := newPinService(t, repo)
	repo.updErr = common.ErrorNotFound

	err := s.Rotate(context.Background(), "1234", "5678")
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestRotate_SamePinProducesDifferentHashes(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	s := newPinService(t, repo)
	ctx := context.Background()

	require.NoError(t, s.Rotate(ctx, "1234", "1234"))
	first := repo.hash()
	require.NoError(t, s.Rotate(ctx, "1234", "1234"))
	second := repo.hash()

	assert.NotEqual(t, first, second, "salt must be fresh per rotation")
	cost, err := bcrypt.Cost([]byte(second))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestRotate_ConcurrentLastWriterWins(t *testing.T) {
	repo := newFakeSettingsRepo(mustHash(t, "1234"))
	s := newPinService(t, repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, next := range []string{"1111", "2222"} {
		wg.Add(1)
		go func(i int, next string) {
			defer wg.Done()
			errs[i] = s.Rotate(ctx, "1234", next)
		}(i, next)
	}
	wg.Wait()

	// Either both verified against the old hash and both wrote, or one saw the
	// other's write and failed authentication. Exactly one new PIN is valid.
	var valid int
	for _, pin := range []string{"1111", "2222"} {
		ok, err := s.Verify(ctx, pin)
		require.NoError(t, err)
		if ok {
			valid++
		}
	}
	assert.Equal(t, 1, valid)

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
		}
	}
}

func TestProvision(t *testing.T) {
	repo := &fakeSettingsRepo{}
	s := newPinService(t, repo)
	ctx := context.Background()

	_, err := s.Verify(ctx, "1234")
	require.ErrorIs(t, err, common.ErrNotConfigured)

	require.NoError(t, s.Provision(ctx, "1234"))
	ok, err := s.Verify(ctx, "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, s.Provision(ctx, " "), common.ErrMalformedInput)

	repo.upsErr = errors.New("down")
	assert.ErrorIs(t, s.Provision(ctx, "9999"), common.ErrStorageUnavailable)
}

func TestHash(t *testing.T) {
	s := newPinService(t, newFakeSettingsRepo(""))

	h, err := s.Hash("1234")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("1234")))

	_, err = s.Hash("")
	assert.ErrorIs(t, err, common.ErrMalformedInput)
}

func TestNewPinService_CostFallsBackToDefault(t *testing.T) {
	s := NewPinService(nil, &fakeRepoManager{}, &config.Config{PinHashCost: 0})
	assert.Equal(t, bcrypt.DefaultCost, s.cost)
}

func TestUnlockToken_RoundTrip(t *testing.T) {
	s := newPinService(t, newFakeSettingsRepo(""))

	tok, err := s.IssueUnlockToken()
	require.NoError(t, err)
	assert.NoError(t, s.CheckUnlockToken(tok))

	assert.ErrorIs(t, s.CheckUnlockToken(""), common.ErrInvalidToken)
	assert.ErrorIs(t, s.CheckUnlockToken("garbage"), common.ErrInvalidToken)
}

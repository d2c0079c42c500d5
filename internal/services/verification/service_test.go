package verification

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "vestra/internal/errors"
	"vestra/internal/models"
)

// fakeVerificationRepo is an in-memory VerificationRepository.
type fakeVerificationRepo struct {
	nextID uint
	codes  map[uint]*models.VerificationCode
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{codes: make(map[uint]*models.VerificationCode)}
}

func (r *fakeVerificationRepo) Create(code *models.VerificationCode) error {
	r.nextID++
	code.ID = r.nextID
	clone := *code
	r.codes[code.ID] = &clone
	return nil
}

func (r *fakeVerificationRepo) GetLatest(identifier, codeType string) (*models.VerificationCode, error) {
	var matches []*models.VerificationCode
	for _, c := range r.codes {
		if c.Identifier == identifier && c.Type == codeType && !c.IsUsed {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, domain.ErrCodeNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	clone := *matches[0]
	return &clone, nil
}

func (r *fakeVerificationRepo) Update(code *models.VerificationCode) error {
	clone := *code
	r.codes[code.ID] = &clone
	return nil
}

func (r *fakeVerificationRepo) Delete(id uint) error {
	delete(r.codes, id)
	return nil
}

func (r *fakeVerificationRepo) DeleteUnconsumed(identifier, codeType string) error {
	for id, c := range r.codes {
		if c.Identifier == identifier && c.Type == codeType && !c.IsUsed {
			delete(r.codes, id)
		}
	}
	return nil
}

func newTestService(t *testing.T, repo *fakeVerificationRepo) (*service, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, Config{}).(*service)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestGenerateIssuesNumericCode(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, now := newTestService(t, repo)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)
	assert.Len(t, code.Code, 6)
	for _, r := range code.Code {
		assert.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", code.Code)
	}
	assert.Equal(t, now.Add(10*time.Minute), code.ExpiresAt)
	assert.Equal(t, 3, code.MaxAttempts)
}

func TestGenerateInvalidatesPriorCodes(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, now := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	second, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)

	// The first code is gone, even if the guess is right.
	err = svc.Verify(ctx, "user@example.com", models.CodeTypeLogin, first.Code)
	if first.Code != second.Code {
		assert.ErrorIs(t, err, domain.ErrCodeInvalid)
	}

	_, exists := repo.codes[first.ID]
	assert.False(t, exists)
}

func TestGenerateResendCooldown(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, now := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)

	*now = now.Add(30 * time.Second)
	_, err = svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	assert.ErrorIs(t, err, domain.ErrResendCooldown)

	*now = now.Add(31 * time.Second)
	_, err = svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	assert.NoError(t, err)
}

func TestGenerateCooldownIsPerType(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)

	_, err = svc.Generate(ctx, "user@example.com", models.CodeTypePasswordReset)
	assert.NoError(t, err)
}

func TestVerifyHappyPath(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)

	err = svc.Verify(ctx, "user@example.com", models.CodeTypeLogin, code.Code)
	require.NoError(t, err)

	// Consumed codes cannot be replayed.
	err = svc.Verify(ctx, "user@example.com", models.CodeTypeLogin, code.Code)
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestVerifyExpiredCodeIsDeleted(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, now := newTestService(t, repo)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)

	*now = now.Add(11 * time.Minute)
	err = svc.Verify(ctx, "user@example.com", models.CodeTypeLogin, code.Code)
	assert.ErrorIs(t, err, domain.ErrCodeExpired)

	err = svc.Verify(ctx, "user@example.com", models.CodeTypeLogin, code.Code)
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestVerifyAttemptExhaustion(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	code, err := svc.Generate(ctx, "user@example.com", models.CodeTypeLogin)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code.Code {
		wrong = "000001"
	}

	// Three wrong guesses burn the code.
	for i := 0; i < 3; i++ {
		err = svc.Verify(ctx, "user@example.com", models.CodeTypeLogin, wrong)
		assert.ErrorIs(t, err, domain.ErrCodeInvalid)
	}

	// The fourth attempt finds nothing, even with the right code.
	err = svc.Verify(ctx, "user@example.com", models.CodeTypeLogin, code.Code)
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestVerifyNoCode(t *testing.T) {
	repo := newFakeVerificationRepo()
	svc, _ := newTestService(t, repo)

	err := svc.Verify(context.Background(), "nobody@example.com", models.CodeTypeLogin, "123456")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

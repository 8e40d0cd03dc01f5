package utils

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	withBase := regexp.MustCompile(`^[a-z0-9-]+-[0-9a-f]{8}$`)
	suffixOnly := regexp.MustCompile(`^[0-9a-f]{8}$`)

	slug := GenerateSlug("Mesa 01")
	assert.Regexp(t, withBase, slug)
	assert.Equal(t, "mesa-01-", slug[:8])

	assert.Regexp(t, suffixOnly, GenerateSlug(""))
	assert.Regexp(t, suffixOnly, GenerateSlug("  ###  "))

	slug = GenerateSlug("--Mesa__  Varanda!!--")
	assert.Regexp(t, withBase, slug)
	assert.Equal(t, "mesa-varanda-", slug[:13])

	assert.NotEqual(t, GenerateSlug("mesa"), GenerateSlug("mesa"))
}

func TestComparePassword(t *testing.T) {
	SetBcryptCost(4)
	defer SetBcryptCost(DefaultBcryptCost)

	hash, err := HashPassword("Secret@123")
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(hash))

	ok, upgrade := ComparePassword("Secret@123", hash)
	assert.True(t, ok)
	assert.False(t, upgrade)

	ok, _ = ComparePassword("wrong", hash)
	assert.False(t, ok)

	ok, upgrade = ComparePassword("plain", "plain")
	assert.True(t, ok)
	assert.True(t, upgrade)

	ok, upgrade = ComparePassword("plain", "other")
	assert.False(t, ok)
	assert.False(t, upgrade)

	ok, _ = ComparePassword("", "")
	assert.False(t, ok)
}

func TestIsBcryptHash(t *testing.T) {
	assert.True(t, IsBcryptHash("$2a$10$abc"))
	assert.True(t, IsBcryptHash("$2b$10$abc"))
	assert.True(t, IsBcryptHash("$2y$10$abc"))
	assert.False(t, IsBcryptHash("$2x$10$abc"))
	assert.False(t, IsBcryptHash("password"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidPayload, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("order 1: %w", ErrNotFound), http.StatusNotFound},
		{ErrDuplicateUsername, http.StatusConflict},
		{ErrInvalidTransition, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{NewStorageError(errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}

	assert.Nil(t, NewStorageError(nil))
	se := NewStorageError(errors.New("disk full"))
	assert.Same(t, se, NewStorageError(se))
}

func TestFormatCurrencyBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatCurrencyBRL(0))
	assert.Equal(t, "R$ 35,50", FormatCurrencyBRL(35.5))
	assert.Equal(t, "R$ 1.234,56", FormatCurrencyBRL(1234.56))
	assert.Equal(t, "R$ 1.000.000,00", FormatCurrencyBRL(1000000))
	assert.Equal(t, "-R$ 10,00", FormatCurrencyBRL(-10))
}

func TestNaturalLess(t *testing.T) {
	names := []string{"mesa 10", "Mesa 2", "ana", "mesa 1", "bruno"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
	assert.Equal(t, []string{"ana", "bruno", "mesa 1", "Mesa 2", "mesa 10"}, names)

	assert.True(t, NaturalLess("a", "ab"))
	assert.False(t, NaturalLess("ab", "ab"))
	assert.True(t, NaturalLess("item 007", "item 8"))
}

func TestTokenRoundTripAndRevoke(t *testing.T) {
	SetJWTSecret("test-secret", time.Hour)

	token, err := GenerateToken("u-1", "mesa1", "customer")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "mesa1", claims.Username)
	assert.Equal(t, "customer", claims.Role)

	BlacklistToken(token, claims.ExpiresAt.Time)
	_, err = ParseToken(token)
	assert.Error(t, err)

	assert.Equal(t, 1, CleanupBlacklist(claims.ExpiresAt.Time.Add(time.Second)))
	assert.False(t, IsTokenBlacklisted(token))

	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Senha@123"))
	assert.False(t, IsStrongPassword("Sh@1"))
	assert.False(t, IsStrongPassword("senha@123"))
	assert.False(t, IsStrongPassword("Senha1234"))
}

package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastHasher() *Hasher {
	return NewHasherWithParams(1, 64, 1)
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := fastHasher()

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"))
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, h.Verify(hash, "correct horse battery staple"))
	assert.False(t, h.Verify(hash, "wrong"))
}

func TestHasher_SaltsEachHash(t *testing.T) {
	h := fastHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_VerifyRejectsMalformed(t *testing.T) {
	h := fastHasher()
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$aGFzaA",
	} {
		assert.False(t, h.Verify(encoded, "anything"), encoded)
	}
}

func TestNewPolicy_UnknownRule(t *testing.T) {
	_, err := NewPolicy(PolicyConfig{Rules: []string{"min_length", "entropy"}})
	require.ErrorIs(t, err, ErrUnknownRule)
}

func TestNewPolicy_Defaults(t *testing.T) {
	p, err := NewPolicy(PolicyConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultRules, p.Rules())
}

func TestPolicy_Validate(t *testing.T) {
	p, err := NewPolicy(PolicyConfig{})
	require.NoError(t, err)
	attrs := Attributes{Username: "alice", Email: "alice@example.com"}

	assert.Empty(t, p.Validate("s3cure-Booking!", attrs))

	problems := p.Validate("short", attrs)
	assert.Contains(t, problems, "This password is too short. It must contain at least 8 characters.")

	assert.Contains(t, p.Validate("4815162342", attrs), "This password is entirely numeric.")
	assert.Contains(t, p.Validate("Password123", attrs), "This password is too common.")
	assert.Contains(t, p.Validate("alice123", attrs), "The password is too similar to the username.")
}

func TestPolicy_OnlyConfiguredRules(t *testing.T) {
	p, err := NewPolicy(PolicyConfig{Rules: []string{RuleMinimumLength}, MinLength: 4})
	require.NoError(t, err)

	assert.Empty(t, p.Validate("1234", Attributes{}))
	assert.Len(t, p.Validate("123", Attributes{}), 1)
}

func TestSimilarityRatio(t *testing.T) {
	assert.InDelta(t, 1.0, similarityRatio("abc", "abc"), 0.0001)
	assert.InDelta(t, 0.0, similarityRatio("abc", "xyz"), 0.0001)
	assert.InDelta(t, 2*5.0/13.0, similarityRatio("alice123", "alice"), 0.0001)
}

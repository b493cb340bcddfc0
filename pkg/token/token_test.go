package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planforge/pkg/token"
)

type claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	Exp       int64  `json:"exp"`
}

func TestGenerateParse(t *testing.T) {
	t.Parallel()

	const secret = "test-secret-32-chars-long-12345"

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		in := claims{SessionID: "abc", Email: "a@b.com", Exp: 1700000000}
		tok, err := token.Generate(in, secret)
		require.NoError(t, err)
		require.NotEmpty(t, tok)

		out, err := token.Parse[claims](tok, secret)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("wrong secret fails signature", func(t *testing.T) {
		t.Parallel()

		tok, err := token.Generate(claims{SessionID: "abc"}, secret)
		require.NoError(t, err)

		_, err = token.Parse[claims](tok, "another-secret")
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("tampered payload fails signature", func(t *testing.T) {
		t.Parallel()

		tok, err := token.Generate(claims{SessionID: "abc"}, secret)
		require.NoError(t, err)

		parts := strings.Split(tok, ".")
		tampered := "e30" + "." + parts[1] // {} payload with original signature

		_, err = token.Parse[claims](tampered, secret)
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()

		for _, tok := range []string{"", "no-dot", "a.b.c", "!!!.###"} {
			_, err := token.Parse[claims](tok, secret)
			assert.ErrorIs(t, err, token.ErrInvalidToken, "token %q", tok)
		}
	})
}

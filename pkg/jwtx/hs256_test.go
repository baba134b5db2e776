package jwtx_test

import (
	"testing"
	"time"

	"github.com/foliokit/folio/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewHS256RejectsWeakSecret(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("short"), "folio")
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)

	_, err = jwtx.NewHS256(testSecret, "folio")
	require.NoError(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, "folio")
	require.NoError(t, err)

	for _, role := range []string{"user", "admin"} {
		claims := jwtx.NewSessionClaims("01USER", role, "folio", time.Hour, time.Now().UTC())
		token, err := h.Sign(claims)
		require.NoError(t, err)

		got, err := h.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "01USER", got.Subject)
		require.Equal(t, role, got.Role)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, "folio")
	require.NoError(t, err)

	claims := jwtx.NewSessionClaims("01USER", "user", "folio", time.Minute, time.Now().UTC().Add(-time.Hour))
	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	signer, err := jwtx.NewHS256(testSecret, "folio")
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), "folio")
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewSessionClaims("01USER", "user", "folio", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyMalformedInput(t *testing.T) {
	h, err := jwtx.NewHS256(testSecret, "folio")
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d", "eyJhbGciOiJIUzI1NiJ9..sig"} {
		_, err := h.Verify(tok)
		require.Error(t, err, "token %q should be rejected", tok)
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	signer, err := jwtx.NewHS256(testSecret, "other-service")
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256(testSecret, "folio")
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewSessionClaims("01USER", "user", "other-service", time.Hour, time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

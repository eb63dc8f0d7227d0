package jwtx_test

import (
	"testing"
	"time"

	"github.com/elmagroup/backoffice/pkg/cryptox"
	"github.com/elmagroup/backoffice/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "elma-backoffice"

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newSigner(t, "session-key")
	require.Equal(t, "session-key", signer.KID())

	claims := jwtx.NewSessionClaims("user-456", "alice", exampleIssuer, 5*time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	keys := jwtx.NewKeySet()
	require.False(t, keys.IsReady())
	keys.AddSigner(signer)
	require.True(t, keys.IsReady())

	parsed, err := jwtx.NewVerifierEdDSA(keys, exampleIssuer).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-456", parsed.Subject)
	require.Equal(t, "alice", parsed.Username)
	require.Equal(t, exampleIssuer, parsed.Issuer)
	require.NotEmpty(t, parsed.ID)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	signer := newSigner(t, "k1")
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	token, err := signer.Sign(jwtx.NewSessionClaims("u", "u", "someone-else", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keys, exampleIssuer).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsUnknownKey(t *testing.T) {
	trusted := newSigner(t, "trusted")
	rogue := newSigner(t, "rogue")

	keys := jwtx.NewKeySet()
	keys.AddSigner(trusted)

	token, err := rogue.Sign(jwtx.NewSessionClaims("u", "u", exampleIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keys, exampleIssuer).Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsForgedSignature(t *testing.T) {
	trusted := newSigner(t, "shared-kid")
	forger := newSigner(t, "shared-kid")

	keys := jwtx.NewKeySet()
	keys.AddSigner(trusted)

	token, err := forger.Sign(jwtx.NewSessionClaims("u", "u", exampleIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keys, exampleIssuer).Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	signer := newSigner(t, "k1")
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	issued := time.Now().Add(-2 * time.Hour).UTC()
	token, err := signer.Sign(jwtx.NewSessionClaims("u", "u", exampleIssuer, time.Hour, issued))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keys, exampleIssuer).Verify(token)
	require.Error(t, err)
}

func TestClaimsValidation(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "a"}}
	require.NoError(t, c.ValidateIssuer(""))
	require.NoError(t, c.ValidateIssuer("a"))
	require.ErrorIs(t, c.ValidateIssuer("b"), jwtx.ErrIssuer)

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Minute))
	require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
}

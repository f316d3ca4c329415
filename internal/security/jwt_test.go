package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func sign(t *testing.T, k *rsa.PrivateKey, c jwt.StandardClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, AccessClaims{StandardClaims: c}).SignedString(k)
	require.NoError(t, err)
	return s
}

func TestJWTVerifier_VerifyLogin(t *testing.T) {
	k := newKey(t)
	now := time.Now()
	v := NewJWTVerifier(&k.PublicKey, "cwrk-auth", "cwrk", 30*time.Second)

	valid := jwt.StandardClaims{
		Subject:   "alice",
		Issuer:    "cwrk-auth",
		Audience:  "cwrk",
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(time.Minute).Unix(),
	}

	login, err := v.VerifyLogin(sign(t, k, valid))
	require.NoError(t, err)
	assert.Equal(t, "alice", login)

	t.Run("wrong issuer", func(t *testing.T) {
		c := valid
		c.Issuer = "other"
		_, err := v.VerifyLogin(sign(t, k, c))
		assert.ErrorIs(t, err, ErrInvalidIssuer)
	})
	t.Run("wrong audience", func(t *testing.T) {
		c := valid
		c.Audience = "other"
		_, err := v.VerifyLogin(sign(t, k, c))
		assert.ErrorIs(t, err, ErrInvalidAudience)
	})
	t.Run("expired beyond skew", func(t *testing.T) {
		c := valid
		c.ExpiresAt = now.Add(-time.Minute).Unix()
		_, err := v.VerifyLogin(sign(t, k, c))
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
	t.Run("expired within skew", func(t *testing.T) {
		c := valid
		c.ExpiresAt = now.Add(-10 * time.Second).Unix()
		_, err := v.VerifyLogin(sign(t, k, c))
		assert.NoError(t, err)
	})
	t.Run("empty subject", func(t *testing.T) {
		c := valid
		c.Subject = ""
		_, err := v.VerifyLogin(sign(t, k, c))
		assert.ErrorIs(t, err, ErrInvalidSubject)
	})
	t.Run("foreign key", func(t *testing.T) {
		_, err := v.VerifyLogin(sign(t, newKey(t), valid))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := v.VerifyLogin("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("hs256 rejected", func(t *testing.T) {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{StandardClaims: valid}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = v.VerifyLogin(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLoadRSAPublicKeyFromPEM(t *testing.T) {
	k := newKey(t)
	der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	pub, err := LoadRSAPublicKeyFromPEM(path)
	require.NoError(t, err)
	assert.True(t, k.PublicKey.Equal(pub))

	_, err = LoadRSAPublicKeyFromPEM(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}

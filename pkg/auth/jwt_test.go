package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "advisor-test",
		Audience:   "mortgage-advisor",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken("user-42", []string{RoleAdmin, RoleAdvisor})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "advisor-test", claims.Issuer)
	assert.True(t, claims.HasRole(RoleAdmin))
	assert.False(t, claims.HasRole(RoleBorrower))
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWTService(t)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.GenerateToken("user-42", nil)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	other, err := NewJWTService(JWTConfig{Secret: "another-secret", Issuer: "advisor-test", Audience: "mortgage-advisor", Expiration: time.Minute})
	require.NoError(t, err)
	token, err := other.GenerateToken("user-42", nil)
	require.NoError(t, err)

	_, err = newTestJWTService(t).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	other, err := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "someone-else", Audience: "mortgage-advisor", Expiration: time.Minute})
	require.NoError(t, err)
	token, err := other.GenerateToken("user-42", nil)
	require.NoError(t, err)

	_, err = newTestJWTService(t).ValidateToken(token)
	assert.Error(t, err)
}

func rsaKeyPEM(t *testing.T) (string, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	return string(priv), string(pub)
}

func TestRSA_IssuerAndValidator(t *testing.T) {
	priv, pub := rsaKeyPEM(t)

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: priv, Expiration: time.Minute})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: pub})
	require.NoError(t, err)

	token, err := issuer.GenerateToken("svc-catalog", []string{RoleService})
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "svc-catalog", claims.Subject)

	_, err = validator.GenerateToken("x", nil)
	assert.Error(t, err, "validation-only service cannot sign")
}

func TestRSA_RejectsHMACToken(t *testing.T) {
	_, pub := rsaKeyPEM(t)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: pub})
	require.NoError(t, err)

	hmac, err := NewJWTService(JWTConfig{Secret: pub, Expiration: time.Minute})
	require.NoError(t, err)
	token, err := hmac.GenerateToken("attacker", []string{RoleAdmin})
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewJWTService_RequiresKey(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	assert.Error(t, err)
}

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	policy := Policy{
		Public:      []string{"/svc/Public"},
		MethodRoles: map[string][]string{"/svc/Admin": {RoleAdmin}},
	}
	interceptor := UnaryAuthInterceptor(svc, policy)

	okHandler := func(ctx context.Context, _ any) (any, error) {
		claims, _ := ClaimsFromContext(ctx)
		return claims, nil
	}
	call := func(method, token string) (any, error) {
		ctx := context.Background()
		if token != "" {
			ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", "Bearer "+token))
		}
		return interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, okHandler)
	}

	adminToken, err := svc.GenerateToken("admin-1", []string{RoleAdmin})
	require.NoError(t, err)
	borrowerToken, err := svc.GenerateToken("user-1", []string{RoleBorrower})
	require.NoError(t, err)

	t.Run("public method needs no token", func(t *testing.T) {
		_, err := call("/svc/Public", "")
		assert.NoError(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := call("/svc/Any", "")
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := call("/svc/Any", "not-a-jwt")
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		resp, err := call("/svc/Any", borrowerToken)
		require.NoError(t, err)
		claims, ok := resp.(*Claims)
		require.True(t, ok)
		assert.Equal(t, "user-1", claims.Subject)
	})

	t.Run("role required", func(t *testing.T) {
		_, err := call("/svc/Admin", borrowerToken)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))

		_, err = call("/svc/Admin", adminToken)
		assert.NoError(t, err)
	})
}

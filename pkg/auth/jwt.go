package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig holds JWT configuration. Exactly one key source is required:
// an RSA private key (sign and verify), an RSA public key (verify only) or
// an HMAC secret.
type JWTConfig struct {
	Secret        string
	PrivateKeyPEM string
	PublicKeyPEM  string

	Issuer     string
	Audience   string
	Expiration time.Duration
	Leeway     time.Duration
}

// JWTService issues and validates bearer tokens.
type JWTService struct {
	config     JWTConfig
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	parser     *jwt.Parser
	now        func() time.Time
}

// NewJWTService creates a new JWTService with the given configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	svc := &JWTService{config: cfg, now: time.Now}

	methods := []string{jwt.SigningMethodRS256.Alg()}
	switch {
	case cfg.PrivateKeyPEM != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA private key: %w", err)
		}
		svc.privateKey = key
		svc.publicKey = &key.PublicKey
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}
		svc.publicKey = key
	case cfg.Secret != "":
		methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, errors.New("jwt configuration requires PrivateKeyPEM, PublicKeyPEM, or Secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(func() time.Time { return svc.now() }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	svc.parser = jwt.NewParser(opts...)

	return svc, nil
}

// GenerateToken signs a token for subject carrying roles.
func (s *JWTService) GenerateToken(subject string, roles []string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Roles: roles,
	}
	if s.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.config.Audience}
	}

	var (
		signed string
		err    error
	)
	switch {
	case s.privateKey != nil:
		signed, err = jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
	case s.publicKey != nil:
		return "", errors.New("cannot generate token: no private key configured (validation-only mode)")
	default:
		signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	}
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT token string.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		if s.publicKey != nil {
			return s.publicKey, nil
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// LoadKeyFromFile reads a PEM-encoded key from a file path.
func LoadKeyFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key file %q: %w", path, err)
	}
	return string(data), nil
}

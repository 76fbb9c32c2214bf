package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/brightclass/backoffice/internal/config"
)

// ErrTokenInvalid is the single rejection for every decode failure: malformed
// ciphertext, authentication failure, bad signature, unparseable claims. The
// distinction is deliberately not surfaced so the token endpoint cannot be
// used as a decryption or signing oracle.
var ErrTokenInvalid = errors.New("invalid token")

const tokenEnvelopePrefix = "v1."

// DecodedClaims is the raw claim set recovered from a token. Pointer fields
// distinguish "absent" from zero values; the session verifier owns the
// structural and temporal checks.
type DecodedClaims struct {
	Subject   string
	IsRefresh *bool
	ExpiresAt *time.Time
}

type envelopeClaims struct {
	IsRefresh *bool `json:"is_refresh,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and decodes session tokens as a sign-then-encrypt
// envelope: claims are signed into a compact JWS under the signing key, and
// the JWS is sealed with an AEAD under a distinct encryption key. The outer
// layer hides claim contents from token holders; the inner signature proves
// issuer authenticity once decrypted. Both keys and algorithm names are fixed
// at construction; key rotation is not supported.
type TokenCodec struct {
	signingKey []byte
	signMethod jwt.SigningMethod
	aead       cipher.AEAD
	issuer     string
}

func NewTokenCodec(cfg *config.Config) (*TokenCodec, error) {
	var method jwt.SigningMethod
	switch cfg.TokenSigningAlg {
	case config.SigningAlgHS256:
		method = jwt.SigningMethodHS256
	case config.SigningAlgHS512:
		method = jwt.SigningMethodHS512
	default:
		return nil, errors.New("unsupported signing algorithm: " + cfg.TokenSigningAlg)
	}

	var aead cipher.AEAD
	var err error
	switch cfg.TokenEncryptionAlg {
	case config.EncryptionAlgA256GCM:
		block, blockErr := aes.NewCipher([]byte(cfg.TokenEncryptionKey))
		if blockErr != nil {
			return nil, blockErr
		}
		aead, err = cipher.NewGCM(block)
	case config.EncryptionAlgXChaCha:
		aead, err = chacha20poly1305.NewX([]byte(cfg.TokenEncryptionKey))
	default:
		return nil, errors.New("unsupported encryption algorithm: " + cfg.TokenEncryptionAlg)
	}
	if err != nil {
		return nil, err
	}

	return &TokenCodec{
		signingKey: []byte(cfg.TokenSigningKey),
		signMethod: method,
		aead:       aead,
		issuer:     cfg.TokenIssuer,
	}, nil
}

// Issue builds, signs and encrypts a token for subjectID expiring at now+ttl.
func (c *TokenCodec) Issue(subjectID string, now time.Time, ttl time.Duration, isRefresh bool) (string, error) {
	claims := envelopeClaims{
		IsRefresh: &isRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now.UTC()),
			ExpiresAt: jwt.NewNumericDate(now.UTC().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(c.signMethod, claims).SignedString(c.signingKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(signed), nil)
	return tokenEnvelopePrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode reverses Issue: decrypt, verify the inner signature, parse claims.
// Temporal validation is intentionally skipped here; the session verifier
// checks expiry against its injected clock. Every failure collapses to
// ErrTokenInvalid.
func (c *TokenCodec) Decode(token string) (*DecodedClaims, error) {
	payload, ok := strings.CutPrefix(token, tokenEnvelopePrefix)
	if !ok || payload == "" {
		return nil, ErrTokenInvalid
	}
	sealed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(sealed) <= c.aead.NonceSize() {
		return nil, ErrTokenInvalid
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	signed, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	var claims envelopeClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	parsed, err := parser.ParseWithClaims(string(signed), &claims, func(t *jwt.Token) (any, error) {
		return c.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Issuer != c.issuer {
		return nil, ErrTokenInvalid
	}

	out := &DecodedClaims{Subject: claims.Subject, IsRefresh: claims.IsRefresh}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		out.ExpiresAt = &exp
	}
	return out, nil
}

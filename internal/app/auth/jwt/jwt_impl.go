package jwt

import (
	"crypto/rsa"
	"errors"
	"os"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JwtUtilImpl struct {
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
	issuer     string
	audience   string
	now        func() time.Time
}

type Option func(*JwtUtilImpl)

// WithClock replaces time.Now for both issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(j *JwtUtilImpl) { j.now = now }
}

// NewJWTUtil signs with RS256 when a key pair is configured and with HS256
// over JWTSecret otherwise. Missing key material is an error.
func NewJWTUtil(cfg *config.Config, opts ...Option) (*JwtUtilImpl, error) {
	j := &JwtUtilImpl{
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		leeway:     cfg.TokenLeeway,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		now:        time.Now,
	}

	switch {
	case cfg.JWTPrivateKeyPath != "" && cfg.JWTPublicKeyPath != "":
		priv, pub, err := loadRSAKeys(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, err
		}
		j.method, j.signKey, j.verifyKey = jwt.SigningMethodRS256, priv, pub
	case cfg.JWTSecret != "":
		secret := []byte(cfg.JWTSecret)
		j.method, j.signKey, j.verifyKey = jwt.SigningMethodHS256, secret, secret
	default:
		return nil, customErrors.WrapInternal(errors.New("no signing key configured"), "NewJWTUtil")
	}
	if j.accessTTL <= 0 {
		return nil, customErrors.WrapInternal(errors.New("access token ttl must be positive"), "NewJWTUtil")
	}

	for _, o := range opts {
		o(j)
	}
	return j, nil
}

func loadRSAKeys(privPath, pubPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privPem, err := os.ReadFile(privPath)
	if err != nil {
		return nil, nil, customErrors.WrapInternal(err, "read private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, nil, customErrors.WrapInternal(err, "parse private key")
	}

	pubPem, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, nil, customErrors.WrapInternal(err, "read public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, nil, customErrors.WrapInternal(err, "parse public key")
	}
	return privKey, pubKey, nil
}

func (j *JwtUtilImpl) GenerateAccessToken(id model.Identity) (token string, exp time.Time, jti string, err error) {
	return j.generate(id, jwt2.TypeAccess, j.accessTTL)
}

// GenerateRefreshToken omits the exp claim when the refresh TTL is zero.
func (j *JwtUtilImpl) GenerateRefreshToken(id model.Identity) (token string, exp time.Time, jti string, err error) {
	return j.generate(id, jwt2.TypeRefresh, j.refreshTTL)
}

func (j *JwtUtilImpl) generate(id model.Identity, typ string, ttl time.Duration) (string, time.Time, string, error) {
	jti := uuid.NewString()
	now := j.now()

	claims := jwt2.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.ID.String(),
			Issuer:   j.issuer,
			Audience: jwt.ClaimStrings{j.audience},
			IssuedAt: jwt.NewNumericDate(now),
			ID:       jti,
		},
		Username: id.Username,
		Role:     id.Role,
		Type:     typ,
	}
	var exp time.Time
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
		exp = claims.ExpiresAt.Time
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.signKey)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign "+typ+" token")
	}
	return signed, exp, jti, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (jwt2.Claims, error) {
	return j.validate(raw, jwt2.TypeAccess, jwt.WithExpirationRequired())
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (jwt2.Claims, error) {
	return j.validate(raw, jwt2.TypeRefresh)
}

// validate reports every failure (bad signature, wrong alg, expired, wrong
// type) as ErrInvalidToken so callers cannot tell them apart.
func (j *JwtUtilImpl) validate(raw, typ string, extra ...jwt.ParserOption) (jwt2.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(j.leeway),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}
	opts = append(opts, extra...)

	token, err := jwt.ParseWithClaims(raw, &jwt2.Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.verifyKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt2.Claims)
	if !ok {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	if claims.Type != typ || claims.ID == "" {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	return *claims, nil
}

// Identity rebuilds the resolved identity carried by validated claims.
func Identity(c jwt2.Claims) model.Identity {
	id, _ := uuid.Parse(c.Subject)
	return model.Identity{ID: id, Username: c.Username, Role: c.Role}
}

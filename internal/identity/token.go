package identity

import (
	"errors"
	"strings"
	"time"

	"clickgo/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier はbearerトークンから呼び出し元のuidを取り出す約束。
// エンジンから見た外部のID検証サービス。
type TokenVerifier interface {
	Verify(rawToken string) (userID string, err error)
}

// ParseBearer はAuthorizationヘッダからトークン部分を抜く。
func ParseBearer(authz string) (string, error) {
	if authz == "" {
		return "", ErrInvalidToken
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", ErrInvalidToken
	}
	return raw, nil
}

// HS256のJWT検証。
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(rawToken string) (string, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}

	return sub, nil
}

// HS256のJWT発行（ログイン用）。
type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret:    []byte(secret),
		accessTTL: accessTTL,
	}
}

func (i *JWTIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub": userID,
		"rol": string(role),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// アクセストークンのclaims。匿名セッションはemailなしでanon=true
type Claims struct {
	Email        string `json:"email,omitempty"`
	Anonymous    bool   `json:"anon,omitempty"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// 署名済みトークンと有効秒数を返す
func (j *JWT) Issue(subject, email string, anonymous bool, tokenVersion int) (string, int, error) {
	now := j.now()
	claims := Claims{
		Email:        email,
		Anonymous:    anonymous,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, int(j.ttl.Seconds()), nil
}

// HS256以外と期限切れは弾く
func (j *JWT) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || t == nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.TokenVersion < 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

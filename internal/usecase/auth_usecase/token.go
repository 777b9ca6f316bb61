package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"charforge/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// アクセストークンの中身
type AccessClaims struct {
	UserID       int64
	Pseudo       string
	Role         model.Role
	TokenVersion int
}

var ErrInvalidToken = errors.New("invalid token")

// JWTの発行と検証（HS256）
type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) *JWTIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL}
}

func (i *JWTIssuer) Issue(user *model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":    strconv.FormatInt(user.ID, 10),
		"role":   string(user.Role),
		"pseudo": user.Pseudo,
		"tv":     user.TokenVersion,
		"iat":    now.Unix(),
		"exp":    expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse は署名・期限を確かめて中身を取り出す
func (i *JWTIssuer) Parse(tokenStr string) (AccessClaims, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return AccessClaims{}, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return AccessClaims{}, ErrInvalidToken
	}
	role := model.Role(fmt.Sprint(mc["role"]))
	if !role.Valid() {
		return AccessClaims{}, ErrInvalidToken
	}
	pseudo, _ := mc["pseudo"].(string)

	// JSON数値はfloat64で来る
	tv, ok := mc["tv"].(float64)
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}

	return AccessClaims{
		UserID:       userID,
		Pseudo:       pseudo,
		Role:         role,
		TokenVersion: int(tv),
	}, nil
}

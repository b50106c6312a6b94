package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	commonerrors "task-manager/pkg/common/errors"
)

// Claims 会话令牌的声明结构，标准声明之外携带用户标识
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// mintToken 签发HS256会话令牌
// jti取随机uuid，确保同一秒内签发的令牌互不相同
func (s *Service) mintToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("token signing failed: %w", err)
	}
	return signed, nil
}

// parseToken 验证签名并取出用户标识
func (s *Service) parseToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", commonerrors.ErrAuthentication
	}

	return claims.UserID, nil
}

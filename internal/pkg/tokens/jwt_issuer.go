package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwtIssuer struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTIssuer(secret, issuer, audience string) Issuer {
	return &jwtIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

func (i *jwtIssuer) Sign(claims RoomClaims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":       i.issuer,
		"aud":       i.audience,
		"sub":       claims.SubjectId,
		"room":      claims.RoomName,
		"moderator": claims.Moderator,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign room token: %w", err)
	}
	return signed, expiresAt, nil
}

func (i *jwtIssuer) Verify(tokenStr string) (*RoomClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithAudience(i.audience), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid room token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid room token claims")
	}

	room, _ := claims["room"].(string)
	sub, _ := claims["sub"].(string)
	moderator, _ := claims["moderator"].(bool)
	return &RoomClaims{
		RoomName:  room,
		SubjectId: sub,
		Moderator: moderator,
	}, nil
}

package service

import (
	"strconv"
	"time"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/util/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService issues and validates the bearer access tokens handed to API
// clients at login. Tokens are signed with the persisted panel secret and
// carry only the minimized identity.
type TokenService struct {
	settingService SettingService
}

type identityClaims struct {
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the identity, valid for the session max
// age configured in settings.
func (s *TokenService) Issue(identity *model.Identity) (string, error) {
	secret, err := s.settingService.GetSecret()
	if err != nil {
		return "", err
	}
	maxAge, err := s.settingService.GetSessionMaxAge()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := identityClaims{
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(identity.Id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(maxAge) * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse validates a token and returns the identity it carries.
func (s *TokenService) Parse(tokenString string) (*model.Identity, error) {
	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.NewErrorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, common.NewError("invalid token")
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, err
	}
	return &model.Identity{
		Id:    id,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

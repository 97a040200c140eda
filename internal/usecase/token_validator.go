package usecase

import (
	"tourbook/internal/pkg/errs"
	"tourbook/internal/pkg/jwt"
	"tourbook/internal/usecase/authz"

	"github.com/google/uuid"
)

var ErrInvalidToken = errs.New("invalid or expired token")

type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, authz.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{jwtService: jwtService}
}

func (v *tokenValidatorImpl) ValidateToken(token string) (uuid.UUID, authz.Role, error) {
	claims, err := v.jwtService.ValidateToken(token)
	if err != nil {
		return uuid.Nil, authz.RoleAnonymous, errs.Mark(err, ErrInvalidToken)
	}
	return claims.UserID, authz.ParseRole(claims.Role), nil
}

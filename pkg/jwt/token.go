package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"BioVision/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const SecretEnvKey = "JWT_ACCESS_TOKEN_SECRET"

var (
	ErrMissingHeader = errors.New("empty Authorization header")
	ErrBadFormat     = errors.New("invalid Authorization format")
	ErrNoSecret      = errors.New("JWT secret not configured")
	ErrBadClaims     = errors.New("token is missing operator claims")
)

// Sign issues an operator token valid for ttl.
func Sign(operator entity.Operator, ttl time.Duration) (string, int64, error) {
	secret := os.Getenv(SecretEnvKey)
	if secret == "" {
		return "", 0, ErrNoSecret
	}

	expiredAt := time.Now().Add(ttl).Unix()
	claims := jwt.MapClaims{
		"exp":      expiredAt,
		"iat":      time.Now().Unix(),
		"sub":      operator.ID,
		"username": operator.Username,
	}

	logrus.WithField("username", operator.Username).Debug("Creating operator token")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return token, expiredAt, nil
}

func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	log := logrus.WithField("func", "VerifyTokenHeader")

	header := c.Get("Authorization")
	if header == "" {
		return nil, ErrMissingHeader
	}

	accessToken, ok := strings.CutPrefix(header, "Bearer ")
	accessToken = strings.TrimSpace(accessToken)
	if !ok || accessToken == "" {
		log.Debug("Invalid Authorization format")
		return nil, ErrBadFormat
	}

	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		log.Error("JWT secret environment variable not set")
		return nil, ErrNoSecret
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		log.WithError(err).Debug("Failed to parse JWT token")
		return nil, err
	}

	return token, nil
}

// OperatorFromToken extracts the operator identity from verified claims.
func OperatorFromToken(token *jwt.Token) (entity.Operator, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Operator{}, ErrBadClaims
	}
	username, _ := claims["username"].(string)
	id, _ := claims["sub"].(string)
	if username == "" {
		return entity.Operator{}, ErrBadClaims
	}
	return entity.Operator{ID: id, Username: username}, nil
}

func GetOperator(c *fiber.Ctx) (entity.Operator, error) {
	operator, ok := c.Locals("user").(entity.Operator)
	if !ok {
		return entity.Operator{}, fiber.ErrUnauthorized
	}
	return operator, nil
}

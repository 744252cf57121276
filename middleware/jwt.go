package middleware

import (
	"edumarket/config"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	ttl := 24
	if config.AppConfig.JWTTTL > 0 {
		ttl = config.AppConfig.JWTTTL
	}
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Duration(ttl) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

func parseToken(authHeader string) (jwt.MapClaims, string) {
	if authHeader == "" {
		return nil, "Missing or invalid Authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, "Invalid Authorization header format"
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "Invalid token payload"
	}
	if _, ok := claims["userId"].(float64); !ok {
		return nil, "Invalid token payload"
	}
	return claims, ""
}

func setIdentity(c *fiber.Ctx, claims jwt.MapClaims) {
	// JWT numbers decode as float64
	c.Locals("userId", uint(claims["userId"].(float64)))
	role, _ := claims["role"].(string)
	c.Locals("role", role)
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	claims, problem := parseToken(c.Get("Authorization"))
	if problem != "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, problem, nil)
	}
	setIdentity(c, claims)
	return c.Next()
}

// OptionalJWTMiddleware identifies the caller when a valid token is sent and lets anonymous requests through.
func OptionalJWTMiddleware(c *fiber.Ctx) error {
	if claims, problem := parseToken(c.Get("Authorization")); problem == "" {
		setIdentity(c, claims)
	}
	return c.Next()
}

// CurrentUser returns the identity stored by the JWT middlewares. userID is 0 for anonymous callers.
func CurrentUser(c *fiber.Ctx) (userID uint, role string) {
	userID, _ = c.Locals("userId").(uint)
	role, _ = c.Locals("role").(string)
	return userID, role
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

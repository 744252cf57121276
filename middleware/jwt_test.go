package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edumarket/config"
	"edumarket/database"
	"edumarket/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestConfig(t *testing.T) {
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTKey: "test-secret", JWTTTL: 1}
	t.Cleanup(func() { config.AppConfig = prev })
}

type envelope struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func call(t *testing.T, app *fiber.App, token string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func whoAmI(c *fiber.Ctx) error {
	uid, role := CurrentUser(c)
	return JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{"userId": uid, "role": role})
}

func bearer(t *testing.T, uid uint, role string) string {
	t.Helper()
	token, err := GenerateJWT(uid, "Ada", role, "ada@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJWTMiddleware(t *testing.T) {
	useTestConfig(t)
	app := fiber.New()
	app.Get("/", JWTMiddleware, whoAmI)

	status, body := call(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Missing or invalid Authorization header", body.Message)

	status, body = call(t, app, "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid Authorization header format", body.Message)

	status, body = call(t, app, "Bearer not.a.token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body.Message)

	status, body = call(t, app, bearer(t, 7, models.RoleInstructor))
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 7, body.Data["userId"])
	assert.Equal(t, models.RoleInstructor, body.Data["role"])
}

func TestJWTMiddlewareRejectsForeignKey(t *testing.T) {
	useTestConfig(t)
	token := bearer(t, 7, models.RoleStudent)

	config.AppConfig.JWTKey = "rotated"
	app := fiber.New()
	app.Get("/", JWTMiddleware, whoAmI)

	status, _ := call(t, app, token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestOptionalJWTMiddleware(t *testing.T) {
	useTestConfig(t)
	app := fiber.New()
	app.Get("/", OptionalJWTMiddleware, whoAmI)

	status, body := call(t, app, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body.Data["userId"])

	status, body = call(t, app, "Bearer garbage")
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body.Data["userId"])

	status, body = call(t, app, bearer(t, 3, models.RoleStudent))
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 3, body.Data["userId"])
}

func TestRequireRoles(t *testing.T) {
	useTestConfig(t)
	app := fiber.New()
	app.Get("/", JWTMiddleware, RequireRoles(models.RoleInstructor, models.RoleAdmin), whoAmI)

	status, body := call(t, app, bearer(t, 1, models.RoleStudent))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Access Denied!", body.Message)

	status, _ = call(t, app, bearer(t, 1, models.RoleAdmin))
	assert.Equal(t, fiber.StatusOK, status)
}

func createUser(t *testing.T, role string) *models.User {
	t.Helper()
	u := models.User{
		Name:            "Ada",
		Email:           role + "@example.com",
		Password:        "not-a-hash",
		Role:            role,
		IsEmailVerified: true,
		Balance:         decimal.Zero,
	}
	require.NoError(t, database.Database.Db.Create(&u).Error)
	return &u
}

func TestActiveUserMiddleware(t *testing.T) {
	useTestConfig(t)
	db := database.OpenTestDb(t)
	app := fiber.New()
	app.Get("/", JWTMiddleware, ActiveUserMiddleware, whoAmI)

	status, _ := call(t, app, bearer(t, 999, models.RoleStudent))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// the stored role replaces a stale claim
	user := createUser(t, models.RoleInstructor)
	status, body := call(t, app, bearer(t, user.ID, models.RoleStudent))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.RoleInstructor, body.Data["role"])

	until := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{"is_blocked": true, "blocked_until": until}).Error)
	status, _ = call(t, app, bearer(t, user.ID, models.RoleInstructor))
	assert.Equal(t, fiber.StatusOK, status, "temporary lockouts only affect login")

	require.NoError(t, db.Model(user).Update("blocked_until", nil).Error)
	status, body = call(t, app, bearer(t, user.ID, models.RoleInstructor))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Your account has been blocked!", body.Message)
}

func TestCheckPermissionMiddleware(t *testing.T) {
	useTestConfig(t)
	db := database.OpenTestDb(t)
	user := createUser(t, models.RoleStudent)
	require.NoError(t, db.Create(&models.Permission{UserID: user.ID, Role: models.RoleStudent, Permission: "buy-course"}).Error)

	app := fiber.New()
	app.Get("/", JWTMiddleware, CheckPermissionMiddleware("buy-course"), whoAmI)
	status, _ := call(t, app, bearer(t, user.ID, models.RoleStudent))
	assert.Equal(t, fiber.StatusOK, status)

	denied := fiber.New()
	denied.Get("/", JWTMiddleware, CheckPermissionMiddleware("manage-vouchers"), whoAmI)
	status, body := call(t, denied, bearer(t, user.ID, models.RoleStudent))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to access this resource!", body.Message)

	anonymous := fiber.New()
	anonymous.Get("/", CheckPermissionMiddleware("buy-course"), whoAmI)
	status, _ = call(t, anonymous, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

package v1

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thc-edge/vetbot/internal/api/v1/handlers"
	"github.com/thc-edge/vetbot/internal/db/models"
	"github.com/thc-edge/vetbot/internal/db/repos"
	"github.com/thc-edge/vetbot/internal/discord"
	"github.com/thc-edge/vetbot/internal/services"
	"github.com/thc-edge/vetbot/internal/targets"
	"github.com/thc-edge/vetbot/internal/torn"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	verifier, err := discord.NewVerifier(strings.Repeat("00", 32))
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AnalysisJob{}))

	game, err := torn.NewClient(nil)
	require.NoError(t, err)
	webhook, err := discord.NewWebhookClient("https://discord.com/api/v10", time.Second)
	require.NoError(t, err)

	router := services.NewRouter(repos.NewAnalysisJobRepository(db), game, targets.NewParser(50, 10), webhook, "app-1", 100)

	app := fiber.New()
	Register(app, handlers.NewInteractionHandler(verifier, router))
	return app
}

func TestRegisterMountsHealth(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegisterMountsInteractions(t *testing.T) {
	app := testApp(t)

	// Unsigned requests stop at the verifier, which proves the route is
	// wired through the handler.
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/interactions", strings.NewReader(`{"type":1}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterUnknownPath(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	app.Get("/health", HealthCheck)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestParseIDParam(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id.String()})
	})

	t.Run("valid uuid passes through", func(t *testing.T) {
		id := uuid.New()
		resp, err := app.Test(httptest.NewRequest("GET", "/things/"+id.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("garbage id is a 400", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/things/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "Invalid id provided.", payload["error"])
	})
}

// The returned error must be non-nil whenever the helper wrote a response,
// otherwise the caller keeps going: it would overwrite the error body and,
// for the finders, dereference the nil record they returned alongside it.
func TestParseIDParamStopsTheHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		if _, err := parseIDParam(c, "id"); err != nil {
			assert.ErrorIs(t, err, errHandled)
			return nil
		}
		return c.JSON(fiber.Map{"reached": true})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/things/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "reached")
	assert.Contains(t, string(body), "Invalid id provided.")
}

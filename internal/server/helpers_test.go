package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"unknownParam", "unknownParam"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, humanizeParam(tt.param))
	}
}

// --- parsePagination ---

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 10, 0},
		{"explicit page and size", "page=3&page_size=20", 20, 40},
		{"first page", "page=1&page_size=25", 25, 0},
		{"size clamped to max", "page_size=500", 100, 0},
		{"zero size falls back", "page_size=0", 10, 0},
		{"negative page falls back", "page=-2&page_size=5", 5, 0},
		{"garbage values fall back", "page=abc&page_size=xyz", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/test", func(c *fiber.Ctx) error {
				p := parsePagination(c)
				return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
			})

			req := httptest.NewRequest(http.MethodGet, "/test?"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body struct {
				Limit  int `json:"limit"`
				Offset int `json:"offset"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantLimit, body.Limit)
			assert.Equal(t, tt.wantOffset, body.Offset)
		})
	}
}

// --- parseID ---

func TestParseID(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantID     uint
	}{
		{"valid id", "/test/42", http.StatusOK, 42},
		{"zero id rejected", "/test/0", http.StatusBadRequest, 0},
		{"negative id rejected", "/test/-5", http.StatusBadRequest, 0},
		{"non-numeric rejected", "/test/abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/test/:id", func(c *fiber.Ctx) error {
				id, err := s.parseID(c, "id")
				if err != nil {
					return nil
				}
				return c.JSON(fiber.Map{"id": id})
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK {
				var body struct {
					ID uint `json:"id"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.wantID, body.ID)
			}
		})
	}
}

// --- respondError ---

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", models.NewNotFoundError("Post", 1), http.StatusNotFound, "NOT_FOUND"},
		{"validation", models.NewValidationError("Text is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"forbidden", models.NewForbiddenError("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"conflict", models.NewConflictError("taken"), http.StatusConflict, "CONFLICT"},
		{"plain error wrapped as internal", io.ErrUnexpectedEOF, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/test", func(c *fiber.Ctx) error {
				return respondError(c, tt.err)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

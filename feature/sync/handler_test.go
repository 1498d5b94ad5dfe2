package sync

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(store *memStore) (*fiber.App, *Service) {
	app := fiber.New()
	service := NewService(newTestOrchestrator(&fakeSource{}, store), store, zap.NewNop())
	NewHandler(service).RegisterRoutes(app)
	return app, service
}

func TestHandleStatus_BeforeFirstPass(t *testing.T) {
	app, _ := newTestApp(newMemStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleStatus_ReturnsLastPass(t *testing.T) {
	app, service := newTestApp(newMemStore())
	service.RecordPass(&PassReport{PassID: "pass-1", Fetched: 5, Completed: 3})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report PassReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "pass-1", report.PassID)
	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, 3, report.Completed)
}

func TestHandleState_SummarizesSnapshot(t *testing.T) {
	store := newMemStore()
	store.snap.Fingerprints["AT001"] = "fp-1"
	store.snap.Fingerprints["AT002"] = "fp-2"
	store.snap.Processed["AT001"] = struct{}{}

	app, _ := newTestApp(store)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/state", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary StateSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 2, summary.Fingerprints)
	assert.Equal(t, 1, summary.Processed)
}

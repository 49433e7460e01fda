package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"healthcorr/adapters/stats/engine"
	"healthcorr/app"
	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
	"healthcorr/domain/survey"
	"healthcorr/internal"
	"healthcorr/internal/dataset"
	"healthcorr/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type rowsSource []survey.RawRow

func (r rowsSource) ReadRows(ctx context.Context) ([]survey.RawRow, error) {
	return r, nil
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Save(ctx context.Context, snap *correlation.Snapshot) error {
	return m.Called(snap).Error(0)
}

func (m *mockRepo) Get(ctx context.Context, id core.SnapshotID) (*correlation.Snapshot, error) {
	args := m.Called(id)
	snap, _ := args.Get(0).(*correlation.Snapshot)
	return snap, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, limit int) ([]ports.SnapshotSummary, error) {
	args := m.Called(limit)
	list, _ := args.Get(0).([]ports.SnapshotSummary)
	return list, args.Error(1)
}

func surveyRows(n int) []survey.RawRow {
	rows := make([]survey.RawRow, n)
	for i := range rows {
		a := 1 + i%8
		rows[i] = survey.RawRow{
			"GENHLTH":  fmt.Sprint(a),
			"INCOME2":  fmt.Sprint(9 - a),
			"EXERANY2": fmt.Sprint(1 + (i*3)%7),
		}
	}
	return rows
}

func newTestServer(t *testing.T, repo ports.MatrixRepository) *Server {
	t.Helper()
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelError)
	cb := survey.MustCodebook([]survey.Variable{
		{Key: "GENHLTH", Label: "General Health"},
		{Key: "EXERANY2", Label: "Exercise in Past 30 Days"},
		{Key: "INCOME2", Label: "Income Level"},
	})

	svc := app.NewHeatmapService(rowsSource(surveyRows(40)), dataset.NewProcessor(2, logger), engine.NewStatsEngine(engine.DefaultOptions()), repo, logger)
	session, err := svc.Load(context.Background(), cb, "")
	require.NoError(t, err)
	return NewServer(svc, session, logger)
}

func do(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func orderOf(body map[string]interface{}) []interface{} {
	m := body["matrix"].(map[string]interface{})
	return m["order"].([]interface{})
}

func TestServer_Health(t *testing.T) {
	w, body := do(t, newTestServer(t, nil), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Variables(t *testing.T) {
	w, body := do(t, newTestServer(t, nil), http.MethodGet, "/api/variables")
	require.Equal(t, http.StatusOK, w.Code)

	vars := body["variables"].([]interface{})
	require.Len(t, vars, 3)
	assert.Equal(t, "GENHLTH", vars[0].(map[string]interface{})["key"])
	assert.Equal(t, "General Health", vars[0].(map[string]interface{})["label"])
}

func TestServer_MatrixAndToggle(t *testing.T) {
	s := newTestServer(t, nil)

	w, natural := do(t, s, http.MethodGet, "/api/matrix")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "natural", natural["mode"])
	assert.Equal(t, "RdBu", natural["scheme"])
	assert.Equal(t, []interface{}{"GENHLTH", "EXERANY2", "INCOME2"}, orderOf(natural))

	cells := natural["matrix"].(map[string]interface{})["cells"].([]interface{})
	require.Len(t, cells, 9)
	assert.Equal(t, 1.0, cells[0].(map[string]interface{})["coefficient"])

	w, toggled := do(t, s, http.MethodPost, "/api/order/toggle")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "similarity", toggled["mode"])
	assert.ElementsMatch(t, orderOf(natural), orderOf(toggled))

	w, back := do(t, s, http.MethodPost, "/api/order/toggle")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, natural["fingerprint"], back["fingerprint"])
}

func TestServer_SetOrder(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := do(t, s, http.MethodPut, "/api/order/similarity")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "similarity", body["mode"])

	w, body = do(t, s, http.MethodPut, "/api/order/alphabetical")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "unknown order mode")
}

func TestServer_Schemes(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := do(t, s, http.MethodGet, "/api/schemes")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["schemes"], len(app.ColorSchemes))
	assert.Equal(t, "RdBu", body["current"])

	w, body = do(t, s, http.MethodPut, "/api/scheme/viridis")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Viridis", body["scheme"])

	w, _ = do(t, s, http.MethodPut, "/api/scheme/jet")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ProfilesAndDataset(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := do(t, s, http.MethodGet, "/api/profiles")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["profiles"], 3)

	w, body = do(t, s, http.MethodGet, "/api/dataset")
	require.Equal(t, http.StatusOK, w.Code)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, 40.0, stats["retained"])
}

func TestServer_TopPairs(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := do(t, s, http.MethodGet, "/api/pairs/top?k=1")
	require.Equal(t, http.StatusOK, w.Code)
	pairs := body["pairs"].([]interface{})
	require.Len(t, pairs, 1)
	top := pairs[0].(map[string]interface{})
	assert.InDelta(t, -1.0, top["coefficient"], 1e-12)

	w, body = do(t, s, http.MethodGet, "/api/pairs/top")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["pairs"], 3)

	w, _ = do(t, s, http.MethodGet, "/api/pairs/top?k=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_SnapshotsDisabled(t *testing.T) {
	s := newTestServer(t, nil)

	w, body := do(t, s, http.MethodPost, "/api/snapshots")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, core.ErrStorageDisabled.Error(), body["error"])

	w, _ = do(t, s, http.MethodGet, "/api/snapshots")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Snapshots(t *testing.T) {
	repo := &mockRepo{}
	s := newTestServer(t, repo)

	repo.On("Save", mock.AnythingOfType("*correlation.Snapshot")).Return(nil).Once()
	w, body := do(t, s, http.MethodPost, "/api/snapshots")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "natural", body["mode"])

	id := core.NewSnapshotID()
	repo.On("Get", id).Return(nil, fmt.Errorf("%w: %s", core.ErrSnapshotNotFound, id)).Once()
	w, _ = do(t, s, http.MethodGet, "/api/snapshots/"+id.String())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, s, http.MethodGet, "/api/snapshots/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.On("List", 5).Return([]ports.SnapshotSummary{{ID: id, Mode: correlation.OrderNatural, Size: 3}}, nil).Once()
	w, body = do(t, s, http.MethodGet, "/api/snapshots?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["snapshots"], 1)

	repo.AssertExpectations(t)
}

func TestOpsServer(t *testing.T) {
	ops := NewOpsServer(true, internal.NewLoggerTo(io.Discard, internal.LogLevelError))

	w := httptest.NewRecorder()
	ops.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	ops.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	disabled := NewOpsServer(false, nil)
	w = httptest.NewRecorder()
	disabled.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

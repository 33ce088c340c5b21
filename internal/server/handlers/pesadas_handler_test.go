package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/candelento/balanza/internal/domain/models"
	"github.com/candelento/balanza/internal/ledger"
	"github.com/candelento/balanza/internal/pdf"
	"github.com/candelento/balanza/internal/server/handlers"
	"github.com/candelento/balanza/internal/server/router"
	"github.com/candelento/balanza/internal/service/pesadas"
	"github.com/candelento/balanza/pkg/clients/notify"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := zaptest.NewLogger(t)
	loc := time.FixedZone("-03", -3*60*60)
	store := ledger.NewStore(filepath.Join(t.TempDir(), "daily_log.xlsx"), logger)
	svc := pesadas.NewService(store, loc, logger)
	handler := handlers.NewPesadasHandler(svc, pdf.NewGenerator(logger), nil, logger)
	return router.New(handler, logger)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndListCompras(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/compras",
		`{"proveedor":"Acopio Norte","mercaderia":"Soja","bruto":1000,"tara":200,"precio_kg":100}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Compra
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ID)
	require.NotNil(t, created.Neto)
	assert.InDelta(t, 800, *created.Neto, 0.001)
	require.NotNil(t, created.Importe)
	assert.InDelta(t, 80000, *created.Importe, 0.001)

	w = doJSON(t, r, http.MethodGet, "/compras", "")
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Compra
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Acopio Norte", listed[0].Proveedor)
}

func TestCreateCompraRequiresProveedor(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/compras", `{"mercaderia":"Soja"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCompraRejectsOutOfRangeWeight(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/compras", `{"proveedor":"Acopio Norte","bruto":-5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdateCompraNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/compras/42", `{"proveedor":"Fantasma"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVentaLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/ventas",
		`{"cliente":"Molino Sur","bruto":500,"tara":100,"precio_kg":150,"incoterm":"FOB"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Venta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "FOB", created.Incoterm)

	w = doJSON(t, r, http.MethodPut, "/ventas/1",
		`{"cliente":"Molino Sur","bruto":500,"tara":100,"precio_kg":180,"incoterm":"FOB"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Venta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.Importe)
	assert.InDelta(t, 72000, *updated.Importe, 0.001)

	w = doJSON(t, r, http.MethodDelete, "/ventas/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/ventas/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReciboCompraPDF(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/compras", `{"proveedor":"Acopio Norte","bruto":1000,"tara":200}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/compras/1/recibo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestReciboMissingCompra(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/compras/9/recibo", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanillaPDF(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/planilla", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

type capturingNotifier struct {
	events chan notify.ChangeEvent
}

func (n *capturingNotifier) NotifyChange(_ context.Context, event notify.ChangeEvent) error {
	n.events <- event
	return nil
}

func TestChangeEventCarriesBusinessDay(t *testing.T) {
	logger := zaptest.NewLogger(t)
	loc := time.FixedZone("-03", -3*60*60)
	fixed := time.Date(2024, 3, 15, 23, 50, 0, 0, loc)
	store := ledger.NewStore(filepath.Join(t.TempDir(), "daily_log.xlsx"), logger,
		ledger.WithClock(func() time.Time { return fixed }))
	svc := pesadas.NewService(store, loc, logger)
	notifier := &capturingNotifier{events: make(chan notify.ChangeEvent, 1)}
	handler := handlers.NewPesadasHandler(svc, pdf.NewGenerator(logger), notifier, logger)
	r := router.New(handler, logger)

	w := doJSON(t, r, http.MethodPost, "/compras", `{"proveedor":"Acopio Norte"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	select {
	case event := <-notifier.events:
		assert.Equal(t, "compra", event.Type)
		assert.Equal(t, 1, event.ID)
		assert.Equal(t, "2024-03-15", event.Date)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

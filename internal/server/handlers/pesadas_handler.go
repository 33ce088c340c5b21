package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/candelento/balanza/internal/domain/models"
	"github.com/candelento/balanza/internal/pdf"
	"github.com/candelento/balanza/internal/service/pesadas"
	"github.com/candelento/balanza/pkg/clients/notify"
)

// PesadasHandler handles the weighing transaction HTTP endpoints.
type PesadasHandler struct {
	svc      *pesadas.Service
	pdfGen   *pdf.Generator
	notifier notify.Client
	logger   *zap.Logger
}

// NewPesadasHandler constructs the HTTP handler adapter.
func NewPesadasHandler(svc *pesadas.Service, pdfGen *pdf.Generator, notifier notify.Client, logger *zap.Logger) *PesadasHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NopClient{}
	}
	return &PesadasHandler{svc: svc, pdfGen: pdfGen, notifier: notifier, logger: logger}
}

// ListCompras returns a day's compras, filtered by the optional search term.
func (h *PesadasHandler) ListCompras(c *gin.Context) {
	compras, err := h.svc.ListCompras(c.Query("date"), c.Query("search"))
	if err != nil {
		h.logger.Error("failed listing compras", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load compras"})
		return
	}
	c.JSON(http.StatusOK, compras)
}

// CreateCompra registers a new purchase weighing.
func (h *PesadasHandler) CreateCompra(c *gin.Context) {
	var req models.Compra
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid compra payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.CreateCompra(req)
	if err != nil {
		h.respondServiceError(c, err, "unable to create compra")
		return
	}

	h.notifyChange("compra", created.ID)
	c.JSON(http.StatusCreated, created)
}

// UpdateCompra replaces today's compra with the given id.
func (h *PesadasHandler) UpdateCompra(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req models.Compra
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid compra payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.svc.UpdateCompra(id, req)
	if err != nil {
		h.respondServiceError(c, err, "unable to update compra")
		return
	}

	h.notifyChange("compra", id)
	c.JSON(http.StatusOK, updated)
}

// DeleteCompra removes today's compra with the given id.
func (h *PesadasHandler) DeleteCompra(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteCompra(id); err != nil {
		h.respondServiceError(c, err, "unable to delete compra")
		return
	}

	h.notifyChange("compra", id)
	c.Status(http.StatusNoContent)
}

// ReciboCompra renders the purchase receipt PDF.
func (h *PesadasHandler) ReciboCompra(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	compra, err := h.svc.GetCompra(c.Query("date"), id)
	if err != nil {
		h.respondServiceError(c, err, "unable to load compra")
		return
	}

	out, err := h.pdfGen.TicketCompra(compra)
	if err != nil {
		h.logger.Error("failed rendering recibo", zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to render recibo"})
		return
	}
	c.Data(http.StatusOK, "application/pdf", out)
}

// ListVentas returns a day's ventas, filtered by the optional search term.
func (h *PesadasHandler) ListVentas(c *gin.Context) {
	ventas, err := h.svc.ListVentas(c.Query("date"), c.Query("search"))
	if err != nil {
		h.logger.Error("failed listing ventas", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load ventas"})
		return
	}
	c.JSON(http.StatusOK, ventas)
}

// CreateVenta registers a new sale weighing.
func (h *PesadasHandler) CreateVenta(c *gin.Context) {
	var req models.Venta
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid venta payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.CreateVenta(req)
	if err != nil {
		h.respondServiceError(c, err, "unable to create venta")
		return
	}

	h.notifyChange("venta", created.ID)
	c.JSON(http.StatusCreated, created)
}

// UpdateVenta replaces today's venta with the given id.
func (h *PesadasHandler) UpdateVenta(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req models.Venta
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid venta payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.svc.UpdateVenta(id, req)
	if err != nil {
		h.respondServiceError(c, err, "unable to update venta")
		return
	}

	h.notifyChange("venta", id)
	c.JSON(http.StatusOK, updated)
}

// DeleteVenta removes today's venta with the given id.
func (h *PesadasHandler) DeleteVenta(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteVenta(id); err != nil {
		h.respondServiceError(c, err, "unable to delete venta")
		return
	}

	h.notifyChange("venta", id)
	c.Status(http.StatusNoContent)
}

// ReciboVenta renders the sale receipt PDF.
func (h *PesadasHandler) ReciboVenta(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	venta, err := h.svc.GetVenta(c.Query("date"), id)
	if err != nil {
		h.respondServiceError(c, err, "unable to load venta")
		return
	}

	out, err := h.pdfGen.TicketVenta(venta)
	if err != nil {
		h.logger.Error("failed rendering recibo", zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to render recibo"})
		return
	}
	c.Data(http.StatusOK, "application/pdf", out)
}

// Planilla renders the daily sheet PDF for the optional date (today by default).
func (h *PesadasHandler) Planilla(c *gin.Context) {
	dateKey := c.Query("date")
	entries, err := h.svc.LoadByDate(dateKey)
	if err != nil {
		h.logger.Error("failed loading planilla entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load entries"})
		return
	}
	if dateKey == "" {
		dateKey = h.svc.TodayKey()
	}

	out, err := h.pdfGen.Planilla(dateKey, entries)
	if err != nil {
		h.logger.Error("failed rendering planilla", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to render planilla"})
		return
	}
	c.Data(http.StatusOK, "application/pdf", out)
}

func (h *PesadasHandler) pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *PesadasHandler) respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, pesadas.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pesadas.ErrInvalidNumeric):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// notifyChange posts the event best effort; a failing webhook never fails the
// request. The event date comes from the business-day clock so it always
// names the sheet that changed, even around midnight.
func (h *PesadasHandler) notifyChange(kind string, id int) {
	date := h.svc.TodayKey()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		event := notify.ChangeEvent{Type: kind, ID: id, Date: date}
		if err := h.notifier.NotifyChange(ctx, event); err != nil {
			h.logger.Warn("change notification failed", zap.String("type", kind), zap.Int("id", id), zap.Error(err))
		}
	}()
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"sales_backend/internal/metrics"
	"sales_backend/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
	metrics      *metrics.Registry
}

type createSaleRequest struct {
	ProductID *string `form:"product_id" json:"product_id" binding:"required"`
	DateStr   *string `form:"date_str" json:"date_str" binding:"required"`
	Sales     *int    `form:"sales" json:"sales" binding:"required"`
}

type updateSaleRequest struct {
	ProductID *string `form:"product_id" json:"product_id"`
	DateStr   *string `form:"date_str" json:"date_str"`
	Sales     *int    `form:"sales" json:"sales"`
}

type listSalesRequest struct {
	ProductID  string `form:"product_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	DateFilter string `form:"date_filter"`
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger, reg *metrics.Registry) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
		metrics:      reg,
	}
}

func (h *salesHandler) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Sales record service is running",
	})
}

// handleCreateSale handles the POST /sales/ endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req createSaleRequest
	if err := bindInput(ctx, &req); err != nil {
		h.invalidRequest(ctx, "create", err)
		return
	}

	sale, err := h.salesService.CreateSale(ctx.Request.Context(), *req.ProductID, *req.DateStr, *req.Sales)
	if err != nil {
		h.fail(ctx, "create", err)
		return
	}

	h.metrics.ObserveOperation("create", "ok")
	ctx.JSON(http.StatusOK, sale)
}

// handleListSales handles the GET /sales/ endpoint.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	var req listSalesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		h.invalidRequest(ctx, "list", err)
		return
	}

	results, err := h.salesService.ListSales(ctx.Request.Context(), sales.ListParams{
		ProductID:  req.ProductID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		DateFilter: req.DateFilter,
	})
	if err != nil {
		h.fail(ctx, "list", err)
		return
	}

	h.metrics.ObserveOperation("list", "ok")
	ctx.JSON(http.StatusOK, results)
}

func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx, "get")
	if !ok {
		return
	}

	sale, err := h.salesService.GetSale(ctx.Request.Context(), id)
	if err != nil {
		h.fail(ctx, "get", err)
		return
	}

	h.metrics.ObserveOperation("get", "ok")
	ctx.JSON(http.StatusOK, sale)
}

// handleUpdateSale handles the PUT /sales/:sale_id endpoint.
func (h *salesHandler) handleUpdateSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx, "update")
	if !ok {
		return
	}

	var req updateSaleRequest
	if err := bindInput(ctx, &req); err != nil {
		h.invalidRequest(ctx, "update", err)
		return
	}

	sale, err := h.salesService.UpdateSale(ctx.Request.Context(), id, sales.SaleUpdate{
		ProductID: req.ProductID,
		DateStr:   req.DateStr,
		Sales:     req.Sales,
	})
	if err != nil {
		h.fail(ctx, "update", err)
		return
	}

	h.metrics.ObserveOperation("update", "ok")
	ctx.JSON(http.StatusOK, sale)
}

// handleDeleteSale handles the DELETE /sales/:sale_id endpoint.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx, "delete")
	if !ok {
		return
	}

	if err := h.salesService.DeleteSale(ctx.Request.Context(), id); err != nil {
		h.fail(ctx, "delete", err)
		return
	}

	h.metrics.ObserveOperation("delete", "ok")
	ctx.JSON(http.StatusOK, gin.H{"message": "sale deleted"})
}

func (h *salesHandler) saleID(ctx *gin.Context, op string) (int64, bool) {
	raw := ctx.Param("sale_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.invalidRequest(ctx, op, err)
		return 0, false
	}
	return id, true
}

func (h *salesHandler) invalidRequest(ctx *gin.Context, op string, err error) {
	h.logger.Warn("failed to bind request", zap.String("operation", op), zap.Error(err))
	h.metrics.ObserveOperation(op, "invalid_request")
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request: " + err.Error()})
}

func (h *salesHandler) fail(ctx *gin.Context, op string, err error) {
	var verr *sales.ValidationError
	switch {
	case errors.As(err, &verr):
		h.metrics.ObserveOperation(op, "invalid_date")
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": verr.Error()})
	case errors.Is(err, sales.ErrNotFound):
		h.metrics.ObserveOperation(op, "not_found")
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "sale not found"})
	default:
		h.logger.Error("sale operation failed", zap.String("operation", op), zap.Error(err))
		h.metrics.ObserveOperation(op, "error")
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}

// bindInput fills obj from the query string and then from an optional JSON
// body, which takes precedence, before validating it.
func bindInput(ctx *gin.Context, obj any) error {
	if err := binding.MapFormWithTag(obj, ctx.Request.URL.Query(), "form"); err != nil {
		return err
	}
	if ctx.Request.Body != nil && ctx.ContentType() == binding.MIMEJSON {
		if err := json.NewDecoder(ctx.Request.Body).Decode(obj); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	return binding.Validator.ValidateStruct(obj)
}

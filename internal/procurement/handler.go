package procurement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitrine-erp/vitrine/internal/orders"
	"github.com/vitrine-erp/vitrine/internal/platform/httpx"
	"github.com/vitrine-erp/vitrine/internal/shared"
)

// Enqueuer dispatches generation to the background queue.
type Enqueuer interface {
	EnqueueGenerate(ctx context.Context, orderRef string, actorID int64) (string, error)
}

// Handler manages procurement endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	enqueuer  Enqueuer
	validator *validator.Validate
}

// NewHandler builds Handler instance. enqueuer may be nil when no queue is
// configured; generation then always runs inline.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer, validator: validator.New()}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/purchase-orders", func(r chi.Router) {
		r.Post("/generate", h.generate)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/document", h.document)
		r.Post("/{id}/approve", h.approve)
	})
}

type generateRequest struct {
	OrderRef string `json:"order_ref" validate:"required,max=50"`
	ActorID  int64  `json:"actor_id" validate:"gte=0"`
	Async    bool   `json:"async"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if req.Async && h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueGenerate(r.Context(), req.OrderRef, req.ActorID)
		if err != nil {
			h.respondError(w, "enqueue generation", err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"task_id": taskID, "order_ref": req.OrderRef})
		return
	}
	generated, err := h.service.GenerateForOrder(r.Context(), req.OrderRef, req.ActorID)
	if err != nil {
		h.respondError(w, "generate purchase orders", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"purchase_orders": generated, "count": len(generated)})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	filters := ListFilters{
		Status:    r.URL.Query().Get("status"),
		OriginRef: r.URL.Query().Get("origin_ref"),
	}
	if supplierID, err := strconv.ParseInt(r.URL.Query().Get("supplier_id"), 10, 64); err == nil {
		filters.SupplierID = supplierID
	}
	pos, total, err := h.service.ListPurchaseOrders(r.Context(), limit, offset, filters)
	if err != nil {
		h.respondError(w, "list purchase orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchase_orders": pos, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	po, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		h.respondError(w, "get purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	po, err := h.service.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		h.respondError(w, "render purchase order document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, BuildDocument(po))
}

type approveRequest struct {
	ActorID int64 `json:"actor_id" validate:"required,gt=0"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req approveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.ApprovePurchaseOrder(r.Context(), id, req.ActorID); err != nil {
		h.respondError(w, "approve purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": string(POStatusApproved)})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, orders.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState), errors.Is(err, orders.ErrNotCompleted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrNumberExhausted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

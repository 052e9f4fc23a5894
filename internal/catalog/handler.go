package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vitrine-erp/vitrine/internal/platform/httpx"
)

// Handler manages catalog endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers)
		r.Post("/", h.createSupplier)
		r.Get("/{id}", h.getSupplier)
		r.Put("/{id}", h.updateSupplier)
		r.Post("/{id}/default", h.setDefaultSupplier)
	})
	r.Route("/routing-rules", func(r chi.Router) {
		r.Get("/", h.listRoutingRules)
		r.Post("/", h.createRoutingRule)
		r.Delete("/{id}", h.deleteRoutingRule)
	})
}

type productRequest struct {
	Code          string `json:"code" validate:"required,max=50"`
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description"`
	Category      string `json:"category" validate:"required,max=100"`
	Unit          string `json:"unit" validate:"required,max=20"`
	SellUnitPrice string `json:"sell_unit_price" validate:"required"`
	IsActive      *bool  `json:"is_active"`
}

type supplierRequest struct {
	Code             string `json:"code" validate:"required,max=50"`
	Name             string `json:"name" validate:"required,max=200"`
	ContactPerson    string `json:"contact_person" validate:"max=100"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone" validate:"max=50"`
	Address          string `json:"address"`
	PaymentTermsDays int    `json:"payment_terms_days" validate:"gte=0,lte=365"`
	Approved         bool   `json:"approved"`
	Rating           int    `json:"rating" validate:"gte=0,lte=5"`
}

type routingRuleRequest struct {
	Priority       int      `json:"priority" validate:"gte=0"`
	Categories     []string `json:"categories"`
	CodeSubstrings []string `json:"code_substrings"`
	SupplierID     int64    `json:"supplier_id" validate:"required,gt=0"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, total, err := h.service.ListProducts(r.Context(), filtersFromQuery(r))
	if err != nil {
		h.respondError(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateProduct(r.Context(), product)
	if err != nil {
		h.respondError(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	if err := h.service.UpdateProduct(r.Context(), id, product); err != nil {
		h.respondError(w, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (Product, bool) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return Product{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Product{}, false
	}
	price, err := decimal.NewFromString(req.SellUnitPrice)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sell_unit_price must be a decimal string")
		return Product{}, false
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Product{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Unit:          req.Unit,
		SellUnitPrice: price,
		IsActive:      active,
	}, true
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, total, err := h.service.ListSuppliers(r.Context(), filtersFromQuery(r))
	if err != nil {
		h.respondError(w, "list suppliers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": suppliers, "total": total})
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	supplier, err := h.service.GetSupplier(r.Context(), id)
	if err != nil {
		h.respondError(w, "get supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, ok := h.decodeSupplier(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateSupplier(r.Context(), supplier)
	if err != nil {
		h.respondError(w, "create supplier", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	supplier, ok := h.decodeSupplier(w, r)
	if !ok {
		return
	}
	if err := h.service.UpdateSupplier(r.Context(), id, supplier); err != nil {
		h.respondError(w, "update supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (h *Handler) setDefaultSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.SetDefaultSupplier(r.Context(), id); err != nil {
		h.respondError(w, "set default supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "default set"})
}

func (h *Handler) decodeSupplier(w http.ResponseWriter, r *http.Request) (Supplier, bool) {
	var req supplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return Supplier{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Supplier{}, false
	}
	return Supplier{
		Code:             req.Code,
		Name:             req.Name,
		ContactPerson:    req.ContactPerson,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		PaymentTermsDays: req.PaymentTermsDays,
		Approved:         req.Approved,
		Rating:           req.Rating,
	}, true
}

func (h *Handler) listRoutingRules(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.LoadRuleSet(r.Context())
	if err != nil {
		h.respondError(w, "load rule set", err)
		return
	}
	httpx.JSON(w, http.StatusOK, set)
}

func (h *Handler) createRoutingRule(w http.ResponseWriter, r *http.Request) {
	var req routingRuleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.CreateRoutingRule(r.Context(), RoutingRule{
		Priority:       req.Priority,
		Categories:     req.Categories,
		CodeSubstrings: req.CodeSubstrings,
		SupplierID:     req.SupplierID,
	})
	if err != nil {
		h.respondError(w, "create routing rule", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteRoutingRule(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.DeleteRoutingRule(r.Context(), id); err != nil {
		h.respondError(w, "delete routing rule", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNoDefaultSupplier):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func filtersFromQuery(r *http.Request) ListFilters {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return ListFilters{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	}
}

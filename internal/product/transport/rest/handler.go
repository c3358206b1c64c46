// Package rest provides HTTP handlers for the product catalog.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/cafekiosk/internal/product/errors"
	"github.com/abgdnv/cafekiosk/internal/product/service"
	"github.com/abgdnv/cafekiosk/pkg/web"
	"github.com/go-chi/chi/v5"
)

const productNumberParam = "productNumber"

// maxProductNumberLen matches the product_number column width.
const maxProductNumberLen = 20

// Handler handles HTTP requests for the product catalog.
type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "api"),
	}
}

// RegisterRoutes registers the HTTP routes for the product catalog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindByProductNumbers)
		r.Post("/new", h.Create)
		r.Get("/selling", h.FindSelling)
	})
	r.Get("/healthz", h.HealthCheck)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var request service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "product", request)

	created, err := h.service.Create(r.Context(), request)
	if err != nil {
		h.respondServiceError(w, r, "Failed to create product", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "productNumber", created.ProductNumber)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// FindSelling lists the products visible for display.
func (h *Handler) FindSelling(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindSelling(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "Failed to fetch products", err)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved selling products", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindByProductNumbers looks products up by one or more productNumber query values.
func (h *Handler) FindByProductNumbers(w http.ResponseWriter, r *http.Request) {
	numbers, ok := web.ParseRequiredList(r, w, h.logger, productNumberParam, web.NotBlank, web.MaxLen(maxProductNumberLen))
	if !ok {
		return
	}
	list, err := h.service.FindByProductNumbers(r.Context(), numbers)
	if err != nil {
		h.respondServiceError(w, r, "Failed to fetch products", err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, producterrors.ErrInvalidProduct):
		if fields, ok := web.ValidationErrors(err); ok {
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", fields)
			web.RespondValidationErrors(w, h.logger, fields)
			return
		}
		h.logger.WarnContext(r.Context(), "Invalid product", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, producterrors.ErrDuplicateProductNumber):
		h.logger.WarnContext(r.Context(), "Product number conflict", "error", err)
		web.RespondError(w, h.logger, http.StatusConflict, "Product number already exists, please retry")
	default:
		h.logger.ErrorContext(r.Context(), message, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, message)
	}
}

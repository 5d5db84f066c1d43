package paymentmethod

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/staynest/staynest-api/internal/middleware"
	"github.com/staynest/staynest-api/internal/pkg/errorhandler"
	"github.com/staynest/staynest-api/internal/pkg/response"
	"github.com/staynest/staynest-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /payment-methods
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	methods, err := h.service.List(r.Context(), userID)
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, err)
		return
	}

	response.OK(w, lo.Map(methods, func(m *Method, _ int) MethodResponse {
		return NewMethodResponse(m)
	}))
}

// Create handles POST /payment-methods
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrs := validator.Validate(&req); fieldErrs != nil {
		response.ValidationError(w, fieldErrs)
		return
	}

	m, err := h.service.Add(r.Context(), userID, AddInput{
		Type:        Type(req.Type),
		CardNumber:  req.CardNumber,
		Label:       req.Label,
		MakeDefault: req.MakeDefault,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCard):
			response.ValidationError(w, map[string]string{"card_number": "Invalid card number"})
		case errors.Is(err, ErrLabelRequired):
			response.ValidationError(w, map[string]string{"label": "This field is required"})
		case errors.Is(err, ErrInvalidType):
			response.ValidationError(w, map[string]string{"type": "Invalid payment method type"})
		default:
			errorhandler.HandleInternal(r.Context(), w, err)
		}
		return
	}

	response.Created(w, NewMethodResponse(m))
}

// Default handles GET /payment-methods/default
func (h *Handler) Default(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Default(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, ErrMethodNotFound) {
			response.NotFound(w, "no default payment method")
			return
		}
		errorhandler.HandleInternal(r.Context(), w, err)
		return
	}
	response.OK(w, NewMethodResponse(m))
}

// SetDefault handles PUT /payment-methods/{id}/default
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid payment method id")
		return
	}

	if err := h.service.SetDefault(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		if errors.Is(err, ErrMethodNotFound) {
			response.NotFound(w, "payment method not found")
			return
		}
		errorhandler.HandleInternal(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// Routes returns payment method routes; all require auth
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/default", h.Default)
	r.Put("/{id}/default", h.SetDefault)

	return r
}

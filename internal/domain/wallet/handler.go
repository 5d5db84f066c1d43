package wallet

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staynest/staynest-api/internal/middleware"
	"github.com/staynest/staynest-api/internal/pkg/errorhandler"
	"github.com/staynest/staynest-api/internal/pkg/response"
	"github.com/staynest/staynest-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

type topUpRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Method      string  `json:"method" validate:"required,payment_method_type"`
	ReferenceID string  `json:"reference_id" validate:"omitempty,max=64"`
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req topUpRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrs := validator.Validate(&req); fieldErrs != nil {
		response.ValidationError(w, fieldErrs)
		return
	}

	tx, err := h.svc.TopUp(r.Context(), userID, req.Amount, req.Method, req.ReferenceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "amount must be positive, at most 10000 and have at most two decimals")
		case errors.Is(err, ErrInvalidMethod):
			response.BadRequest(w, "method must be card, crypto or wire")
		case errors.Is(err, ErrReferenceConflict):
			response.Conflict(w, "reference_id already used for a different top-up")
		default:
			errorhandler.HandleInternal(r.Context(), w, err)
		}
		return
	}

	response.Created(w, tx)
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	txs, err := h.svc.Transactions(r.Context(), userID)
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, err)
		return
	}
	if txs == nil {
		txs = []*Transaction{}
	}
	response.OK(w, txs)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, err)
		return
	}

	response.OK(w, map[string]interface{}{"balance": balance})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/topup", h.TopUp)
	r.Get("/transactions", h.Transactions)
	r.Get("/balance", h.Balance)
	return r
}

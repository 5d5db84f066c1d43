package booking

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/staynest/staynest-api/internal/domain/property"
	"github.com/staynest/staynest-api/internal/middleware"
	"github.com/staynest/staynest-api/internal/pkg/errorhandler"
	"github.com/staynest/staynest-api/internal/pkg/response"
	"github.com/staynest/staynest-api/internal/pkg/validator"
)

const DraftIDHeader = middleware.DraftIDHeader

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// owner resolves whose draft the request addresses. Guests without a valid
// X-Draft-ID get a fresh one, echoed back in the response header.
func owner(w http.ResponseWriter, r *http.Request) Owner {
	if userID := middleware.GetUserID(r.Context()); userID != uuid.Nil {
		return Owner{UserID: userID}
	}
	draftID, err := uuid.Parse(r.Header.Get(DraftIDHeader))
	if err != nil {
		draftID = uuid.New()
	}
	w.Header().Set(DraftIDHeader, draftID.String())
	return Owner{DraftID: draftID}
}

func session(r *http.Request) *Session {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		return nil
	}
	return &Session{UserID: userID, Email: middleware.GetEmail(r.Context())}
}

// GetDraft handles GET /bookings/draft
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	o := owner(w, r)
	response.OK(w, NewDraftView(h.service.GetDraft(r.Context(), o)))
}

// UpdateDraft handles PUT /bookings/draft
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	o := owner(w, r)

	var req UpdateDraftRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if fieldErrs := validator.Validate(&req); fieldErrs != nil {
		response.ValidationError(w, fieldErrs)
		return
	}

	draft, err := h.service.UpdateDraft(r.Context(), o, &req)
	if err != nil {
		h.draftError(w, r, err)
		return
	}
	response.OK(w, NewDraftView(draft))
}

// Reserve handles POST /bookings/draft/reserve
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	o := owner(w, r)

	var req ReserveRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if fieldErrs := validator.Validate(&req); fieldErrs != nil {
		response.ValidationError(w, fieldErrs)
		return
	}

	draft, err := h.service.Reserve(r.Context(), o, &req)
	if err != nil {
		h.draftError(w, r, err)
		return
	}
	response.OK(w, NewDraftView(draft))
}

// ClearDraft handles DELETE /bookings/draft
func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	h.service.ClearDraft(r.Context(), owner(w, r))
	response.NoContent(w)
}

// Submit handles POST /bookings/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	o := owner(w, r)

	var req SubmitRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if fieldErrs := validator.Validate(&req); fieldErrs != nil {
		response.ValidationError(w, fieldErrs)
		return
	}

	writeOutcome(w, h.service.Submit(r.Context(), o, session(r), &req))
}

// ListMine handles GET /bookings
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	bookings, err := h.service.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		errorhandler.HandleInternal(r.Context(), w, err)
		return
	}

	response.OK(w, lo.Map(bookings, func(b *Booking, _ int) Summary {
		return NewSummary(b, "")
	}))
}

func (h *Handler) draftError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, property.ErrPropertyNotFound):
		response.NotFound(w, "Property not found")
	case errors.Is(err, property.ErrPropertyInactive):
		response.Conflict(w, "Property is not accepting bookings")
	case errors.Is(err, ErrInvalidGuests), errors.Is(err, ErrTooManyGuests):
		response.ValidationError(w, map[string]string{"guests": err.Error()})
	case errors.Is(err, ErrInvalidDates):
		field := "check_out"
		if strings.HasPrefix(err.Error(), "check_in:") {
			field = "check_in"
		}
		response.ValidationError(w, map[string]string{field: err.Error()})
	default:
		errorhandler.HandleInternal(r.Context(), w, err)
	}
}

func writeOutcome(w http.ResponseWriter, out Outcome) {
	switch o := out.(type) {
	case Succeeded:
		response.Created(w, SubmitResponse{Booking: o.Booking, Account: o.Account})
	case ValidationFailed:
		response.ErrorWithDetails(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", o.Message,
			map[string]string{o.Field: o.Message})
	case RateLimited:
		response.TooManyRequests(w, "Too many booking attempts, please wait before trying again")
	case PaymentMethodRequired:
		response.Error(w, http.StatusBadRequest, "PAYMENT_METHOD_REQUIRED", "Please select a payment method")
	case DuplicateEmail:
		response.Error(w, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists. Please sign in instead")
	case AccountCreationFailed:
		response.BadGateway(w, "ACCOUNT_CREATION_FAILED", o.Message)
	case SubmissionFailed:
		response.BadGateway(w, "SUBMISSION_FAILED", o.Message)
	default:
		response.InternalError(w)
	}
}

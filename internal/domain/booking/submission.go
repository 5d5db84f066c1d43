package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/staynest/staynest-api/internal/pkg/validator"
)

// FlowState is a step of a submission attempt
type FlowState string

const (
	FlowIdle            FlowState = "idle"
	FlowValidating      FlowState = "validating"
	FlowRateLimited     FlowState = "rate_limited"
	FlowAccountCheck    FlowState = "account_check"
	FlowAccountCreating FlowState = "account_creating"
	FlowSubmitting      FlowState = "submitting"
	FlowSucceeded       FlowState = "succeeded"
	FlowFailed          FlowState = "failed"
)

// Session identifies an authenticated guest
type Session struct {
	UserID uuid.UUID
	Email  string
}

// GuestDetails are the contact fields entered at checkout. They are never
// stored in the draft.
type GuestDetails struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Country         string
	Address         string
	Password        string
	SpecialRequests string
}

// PaymentSelection is the payment method chosen for a booking: a saved
// method by id, a method type, or both.
type PaymentSelection struct {
	MethodID uuid.UUID
	Type     string
}

// IsSet reports whether anything was selected
func (p PaymentSelection) IsSet() bool {
	return p.MethodID != uuid.Nil || p.Type != ""
}

// NewAccount is the sign-up request issued for guests without a session
type NewAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreatedAccount is the identity adopted after sign-up
type CreatedAccount struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
}

// Limiter gates submission attempts per key
type Limiter interface {
	Allow(key string) bool
}

// AccountCreator signs a guest up. It returns ErrDuplicateEmail when the
// email is already registered.
type AccountCreator interface {
	CreateAccount(ctx context.Context, acc NewAccount) (*CreatedAccount, error)
}

// PaymentMethodResolver looks up a user's saved payment methods. A nil id
// asks for the default method.
type PaymentMethodResolver interface {
	Resolve(ctx context.Context, userID, methodID uuid.UUID) (PaymentSelection, bool, error)
}

// SubmitInput is one submission attempt
type SubmitInput struct {
	Session *Session
	Drafts  *DraftStore
	Guest   GuestDetails
	Payment PaymentSelection
}

// Flow runs a submission: rate limit, validation, payment method,
// account creation when there is no session, insert, draft clear.
type Flow struct {
	limiter  Limiter
	accounts AccountCreator
	bookings Repository
	payments PaymentMethodResolver
	observe  func(FlowState)
	now      func() time.Time
}

// FlowOption configures a Flow
type FlowOption func(*Flow)

// WithStateObserver registers fn to receive every state transition
func WithStateObserver(fn func(FlowState)) FlowOption {
	return func(f *Flow) { f.observe = fn }
}

// WithFlowClock overrides the clock used for created_at
func WithFlowClock(now func() time.Time) FlowOption {
	return func(f *Flow) { f.now = now }
}

// NewFlow creates a submission flow
func NewFlow(limiter Limiter, accounts AccountCreator, bookings Repository, payments PaymentMethodResolver, opts ...FlowOption) *Flow {
	f := &Flow{
		limiter:  limiter,
		accounts: accounts,
		bookings: bookings,
		payments: payments,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit runs one attempt and classifies its result. It never retries.
func (f *Flow) Submit(ctx context.Context, in SubmitInput) Outcome {
	t := &transitions{flow: f, state: FlowIdle}

	// 1. rate limit, before any validation
	if !f.limiter.Allow(rateLimitKey(in.Session, in.Guest.Email)) {
		t.to(FlowRateLimited)
		return RateLimited{}
	}

	// 2. guest fields
	t.to(FlowValidating)
	result := validateGuest(in.Guest, in.Session == nil)
	if field, msg, ok := result.FirstError(); ok {
		t.to(FlowFailed)
		return ValidationFailed{Field: field, Message: msg}
	}
	guest := sanitizedGuest(result.SanitizedData)

	// 3. payment method
	payment, err := f.resolvePayment(ctx, in.Session, in.Payment)
	if err != nil {
		log.Error().Err(err).Msg("Payment method lookup failed")
		t.to(FlowFailed)
		return SubmissionFailed{Message: "could not load payment method"}
	}
	if !payment.IsSet() {
		t.to(FlowFailed)
		return PaymentMethodRequired{}
	}

	draft := in.Drafts.Snapshot()
	if draft.State() != StateComplete {
		t.to(FlowFailed)
		return ValidationFailed{Field: "draft", Message: ErrDraftIncomplete.Error()}
	}

	// 4. account
	t.to(FlowAccountCheck)
	var guestID uuid.UUID
	var created *CreatedAccount
	if in.Session != nil {
		guestID = in.Session.UserID
	} else {
		t.to(FlowAccountCreating)
		created, err = f.accounts.CreateAccount(ctx, NewAccount{
			Email:     guest.Email,
			Password:  guest.Password,
			FirstName: guest.FirstName,
			LastName:  guest.LastName,
		})
		if err != nil {
			t.to(FlowFailed)
			if errors.Is(err, ErrDuplicateEmail) {
				return DuplicateEmail{Email: guest.Email}
			}
			log.Error().Err(err).Msg("Account creation during booking failed")
			return AccountCreationFailed{Message: publicMessage(err, "could not create account")}
		}
		guestID = created.UserID
	}

	// 5. insert
	t.to(FlowSubmitting)
	b := newBooking(guestID, draft, guest.SpecialRequests, payment, f.now())
	if err := f.bookings.Create(ctx, b); err != nil {
		log.Error().Err(err).Str("property_id", b.PropertyID.String()).Msg("Booking insert failed")
		t.to(FlowFailed)
		return SubmissionFailed{Message: publicMessage(err, "could not save booking")}
	}

	in.Drafts.Clear(ctx)
	t.to(FlowSucceeded)
	log.Info().Str("booking_id", b.ID.String()).Str("guest_id", guestID.String()).Msg("Booking submitted")

	return Succeeded{Booking: NewSummary(b, draft.Property.Title), Account: created}
}

func (f *Flow) resolvePayment(ctx context.Context, session *Session, sel PaymentSelection) (PaymentSelection, error) {
	if session == nil {
		// saved methods belong to accounts
		return PaymentSelection{Type: sel.Type}, nil
	}
	if sel.MethodID == uuid.Nil && sel.Type != "" {
		return sel, nil
	}
	resolved, ok, err := f.payments.Resolve(ctx, session.UserID, sel.MethodID)
	if err != nil || !ok {
		return PaymentSelection{}, err
	}
	return resolved, nil
}

// rateLimitKey is the user id, else the normalized guest email, else "anonymous"
func rateLimitKey(session *Session, email string) string {
	if session != nil && session.UserID != uuid.Nil {
		return session.UserID.String()
	}
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		return e
	}
	return "anonymous"
}

func validateGuest(g GuestDetails, needsAccount bool) validator.Result {
	v := validator.NewFieldValidator()
	v.ValidateField("first_name", g.FirstName, validator.Rules{Required: true, MinLength: 1, MaxLength: 50}).
		ValidateField("last_name", g.LastName, validator.Rules{Required: true, MinLength: 1, MaxLength: 50})
	if needsAccount {
		v.ValidateField("email", g.Email, validator.Rules{Required: true, Type: validator.TypeEmail}).
			ValidateField("password", g.Password, validator.Rules{
				Required: true,
				Type:     validator.TypePassword,
				// the stored hash must match what the guest types at login
				Custom: func(sanitized string) string {
					if sanitized != g.Password {
						return "Password contains unsupported characters"
					}
					return ""
				},
			})
	}
	v.ValidateField("phone", g.Phone, validator.Rules{Type: validator.TypePhone, MaxLength: 20}).
		ValidateField("address", g.Address, validator.Rules{MaxLength: 200}).
		ValidateField("country", g.Country, validator.Rules{MaxLength: 100}).
		ValidateField("special_requests", g.SpecialRequests, validator.Rules{MaxLength: 1000})
	return v.Result()
}

func sanitizedGuest(data map[string]string) GuestDetails {
	return GuestDetails{
		FirstName:       data["first_name"],
		LastName:        data["last_name"],
		Email:           data["email"],
		Password:        data["password"],
		Phone:           data["phone"],
		Address:         data["address"],
		Country:         data["country"],
		SpecialRequests: data["special_requests"],
	}
}

type transitions struct {
	flow  *Flow
	state FlowState
}

func (t *transitions) to(next FlowState) {
	log.Debug().Str("from", string(t.state)).Str("to", string(next)).Msg("Booking flow transition")
	t.state = next
	if t.flow.observe != nil {
		t.flow.observe(next)
	}
}

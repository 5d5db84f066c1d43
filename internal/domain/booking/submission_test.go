package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/staynest-api/internal/pkg/ratelimit"
)

type fakeAccounts struct {
	calls    int
	err      error
	lastSeen NewAccount
	userID   uuid.UUID
}

func (f *fakeAccounts) CreateAccount(ctx context.Context, acc NewAccount) (*CreatedAccount, error) {
	f.calls++
	f.lastSeen = acc
	if f.err != nil {
		return nil, f.err
	}
	if f.userID == uuid.Nil {
		f.userID = uuid.New()
	}
	return &CreatedAccount{UserID: f.userID, Email: acc.Email, AccessToken: "token"}, nil
}

type fakeBookings struct {
	mu      sync.Mutex
	created []*Booking
	err     error
}

func (f *fakeBookings) Create(ctx context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, b)
	return nil
}

func (f *fakeBookings) ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Booking
	for _, b := range f.created {
		if b.GuestID == guestID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakePayments struct {
	methods map[uuid.UUID]PaymentSelection
	def     *PaymentSelection
	err     error
}

func (f *fakePayments) Resolve(ctx context.Context, userID, methodID uuid.UUID) (PaymentSelection, bool, error) {
	if f.err != nil {
		return PaymentSelection{}, false, f.err
	}
	if methodID == uuid.Nil {
		if f.def == nil {
			return PaymentSelection{}, false, nil
		}
		return *f.def, true, nil
	}
	sel, ok := f.methods[methodID]
	return sel, ok, nil
}

type flowFixture struct {
	flow     *Flow
	accounts *fakeAccounts
	bookings *fakeBookings
	payments *fakePayments
	store    *DraftStore
	states   []FlowState
}

func newFlowFixture(t *testing.T, maxAttempts int) *flowFixture {
	t.Helper()
	f := &flowFixture{
		accounts: &fakeAccounts{},
		bookings: &fakeBookings{},
		payments: &fakePayments{methods: map[uuid.UUID]PaymentSelection{}},
	}
	storage, _ := newTestStorage()
	f.store = NewDraftStore("draft:test", storage, time.Hour)

	guests := 2
	_, err := f.store.Update(context.Background(), DraftPatch{
		Property: testProperty(),
		CheckIn:  date(t, "2024-06-01"),
		CheckOut: date(t, "2024-06-04"),
		Guests:   &guests,
	})
	require.NoError(t, err)
	f.store.Wait()

	limiter := ratelimit.NewFixedWindow(maxAttempts, 10*time.Minute)
	f.flow = NewFlow(limiter, f.accounts, f.bookings, f.payments,
		WithStateObserver(func(s FlowState) { f.states = append(f.states, s) }))
	return f
}

func validGuest() GuestDetails {
	return GuestDetails{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "Ann@Example.com",
		Password:  "Sunny2024",
		Phone:     "+1 555 0100",
	}
}

func cardPayment() PaymentSelection {
	return PaymentSelection{Type: "card"}
}

func TestSubmitGuestSucceeds(t *testing.T) {
	f := newFlowFixture(t, 3)

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: validGuest(), Payment: cardPayment()})

	ok, isSuccess := out.(Succeeded)
	require.True(t, isSuccess, "got %#v", out)
	require.Len(t, f.bookings.created, 1)
	b := f.bookings.created[0]

	assert.Equal(t, f.accounts.userID, b.GuestID)
	assert.Equal(t, "ann@example.com", f.accounts.lastSeen.Email)
	assert.Equal(t, 3, b.Nights)
	assert.InDelta(t, 520.0, b.TotalAmount, 0.001)
	assert.Equal(t, "2024-06-01", ok.Booking.CheckIn)
	assert.Equal(t, "2024-06-04", ok.Booking.CheckOut)
	assert.Equal(t, "Seaside Loft", ok.Booking.PropertyTitle)
	assert.False(t, b.SpecialRequests.Valid)
	require.NotNil(t, ok.Account)
	assert.Equal(t, "token", ok.Account.AccessToken)

	assert.Equal(t, StateEmpty, f.store.Snapshot().State(), "draft cleared after success")
	assert.Equal(t, []FlowState{FlowValidating, FlowAccountCheck, FlowAccountCreating, FlowSubmitting, FlowSucceeded}, f.states)
}

func TestSubmitDuplicateEmailNeverInserts(t *testing.T) {
	f := newFlowFixture(t, 3)
	f.accounts.err = ErrDuplicateEmail

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: validGuest(), Payment: cardPayment()})

	dup, ok := out.(DuplicateEmail)
	require.True(t, ok, "got %#v", out)
	assert.Equal(t, "ann@example.com", dup.Email)
	assert.Empty(t, f.bookings.created)
	assert.Equal(t, StateComplete, f.store.Snapshot().State(), "draft kept for retry")
}

func TestSubmitRateLimitedSkipsValidation(t *testing.T) {
	f := newFlowFixture(t, 1)
	in := SubmitInput{Drafts: f.store, Guest: GuestDetails{Email: "x@example.com"}, Payment: cardPayment()}

	_, first := f.flow.Submit(context.Background(), in).(ValidationFailed)
	require.True(t, first)

	f.states = nil
	out := f.flow.Submit(context.Background(), in)
	assert.IsType(t, RateLimited{}, out)
	assert.Equal(t, []FlowState{FlowRateLimited}, f.states)
	assert.Zero(t, f.accounts.calls)
}

func TestSubmitRateLimitKeys(t *testing.T) {
	userID := uuid.New()
	assert.Equal(t, userID.String(), rateLimitKey(&Session{UserID: userID}, "a@example.com"))
	assert.Equal(t, "a@example.com", rateLimitKey(nil, "  A@Example.com "))
	assert.Equal(t, "anonymous", rateLimitKey(nil, ""))
}

func TestSubmitValidationSurfacesFirstError(t *testing.T) {
	f := newFlowFixture(t, 5)
	g := validGuest()
	g.FirstName = ""
	g.Email = "not-an-email"

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: g, Payment: cardPayment()})

	vf, ok := out.(ValidationFailed)
	require.True(t, ok, "got %#v", out)
	assert.Equal(t, "first_name", vf.Field)
	assert.Equal(t, "first_name is required", vf.Message)
}

func TestSubmitWeakPassword(t *testing.T) {
	f := newFlowFixture(t, 5)
	g := validGuest()
	g.Password = "password"

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: g, Payment: cardPayment()})

	vf, ok := out.(ValidationFailed)
	require.True(t, ok, "got %#v", out)
	assert.Equal(t, "password", vf.Field)
}

func TestSubmitSessionSkipsAccountFields(t *testing.T) {
	f := newFlowFixture(t, 5)
	userID := uuid.New()
	g := GuestDetails{FirstName: "Ann", LastName: "Lee", SpecialRequests: "Late <b>arrival</b>"}

	out := f.flow.Submit(context.Background(), SubmitInput{
		Session: &Session{UserID: userID, Email: "ann@example.com"},
		Drafts:  f.store,
		Guest:   g,
		Payment: cardPayment(),
	})

	require.IsType(t, Succeeded{}, out)
	assert.Zero(t, f.accounts.calls)
	require.Len(t, f.bookings.created, 1)
	assert.Equal(t, userID, f.bookings.created[0].GuestID)
	assert.Equal(t, "Late barrivalb", f.bookings.created[0].SpecialRequests.String)
	assert.Nil(t, out.(Succeeded).Account)
}

func TestSubmitPaymentMethodRequired(t *testing.T) {
	f := newFlowFixture(t, 5)

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: validGuest()})
	assert.IsType(t, PaymentMethodRequired{}, out)

	// a session without a default method is also blocked
	out = f.flow.Submit(context.Background(), SubmitInput{
		Session: &Session{UserID: uuid.New()},
		Drafts:  f.store,
		Guest:   validGuest(),
	})
	assert.IsType(t, PaymentMethodRequired{}, out)
	assert.Empty(t, f.bookings.created)
}

func TestSubmitUsesDefaultPaymentMethod(t *testing.T) {
	f := newFlowFixture(t, 5)
	methodID := uuid.New()
	f.payments.def = &PaymentSelection{MethodID: methodID, Type: "card"}

	out := f.flow.Submit(context.Background(), SubmitInput{
		Session: &Session{UserID: uuid.New()},
		Drafts:  f.store,
		Guest:   validGuest(),
	})

	require.IsType(t, Succeeded{}, out)
	b := f.bookings.created[0]
	assert.True(t, b.PaymentMethodID.Valid)
	assert.Equal(t, methodID, b.PaymentMethodID.UUID)
	assert.Equal(t, "card", b.PaymentMethodType)
}

func TestSubmitRejectsForeignPaymentMethod(t *testing.T) {
	f := newFlowFixture(t, 5)

	out := f.flow.Submit(context.Background(), SubmitInput{
		Session: &Session{UserID: uuid.New()},
		Drafts:  f.store,
		Guest:   validGuest(),
		Payment: PaymentSelection{MethodID: uuid.New()},
	})
	assert.IsType(t, PaymentMethodRequired{}, out)
}

func TestSubmitRejectsPasswordChangedBySanitizing(t *testing.T) {
	for _, pw := range []string{"Secret/Pass1", "Sunny<2024>", "javascript:Go2024"} {
		f := newFlowFixture(t, 5)
		g := validGuest()
		g.Password = pw

		out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: g, Payment: cardPayment()})

		vf, ok := out.(ValidationFailed)
		require.True(t, ok, "%q: got %#v", pw, out)
		assert.Equal(t, "password", vf.Field)
		assert.Equal(t, "Password contains unsupported characters", vf.Message)
		assert.Zero(t, f.accounts.calls, "%q must not reach sign-up", pw)
	}
}

func TestSubmitSurfacesRejectedMessages(t *testing.T) {
	f := newFlowFixture(t, 5)
	f.accounts.err = &RejectedError{Message: "password must be at most 72 bytes"}

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: validGuest(), Payment: cardPayment()})
	failed, ok := out.(AccountCreationFailed)
	require.True(t, ok, "got %#v", out)
	assert.Equal(t, "password must be at most 72 bytes", failed.Message)

	f = newFlowFixture(t, 5)
	f.bookings.err = fmt.Errorf("booking repository create: %w", &RejectedError{Message: "property is no longer available"})

	out = f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: validGuest(), Payment: cardPayment()})
	sf, ok := out.(SubmissionFailed)
	require.True(t, ok, "got %#v", out)
	assert.Equal(t, "property is no longer available", sf.Message)
}

func TestSubmitAccountCreationFailed(t *testing.T) {
	f := newFlowFixture(t, 5)
	f.accounts.err = errors.New("auth service unavailable")

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: validGuest(), Payment: cardPayment()})

	failed, ok := out.(AccountCreationFailed)
	require.True(t, ok, "got %#v", out)
	assert.NotContains(t, failed.Message, "unavailable")
	assert.Empty(t, f.bookings.created)
}

func TestSubmitInsertFailureKeepsDraft(t *testing.T) {
	f := newFlowFixture(t, 5)
	f.bookings.err = errors.New("pq: deadlock detected")

	out := f.flow.Submit(context.Background(), SubmitInput{
		Session: &Session{UserID: uuid.New()},
		Drafts:  f.store,
		Guest:   validGuest(),
		Payment: cardPayment(),
	})

	assert.IsType(t, SubmissionFailed{}, out)
	assert.Equal(t, StateComplete, f.store.Snapshot().State())
	assert.Equal(t, FlowFailed, f.states[len(f.states)-1])
}

func TestSubmitIncompleteDraft(t *testing.T) {
	f := newFlowFixture(t, 5)
	f.store.Clear(context.Background())

	out := f.flow.Submit(context.Background(), SubmitInput{Drafts: f.store, Guest: validGuest(), Payment: cardPayment()})

	vf, ok := out.(ValidationFailed)
	require.True(t, ok, "got %#v", out)
	assert.Equal(t, "draft", vf.Field)
	assert.Zero(t, f.accounts.calls, "no account is created for an incomplete draft")
}

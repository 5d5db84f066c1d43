package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/staynest/staynest-api/internal/domain/property"
)

// Owner identifies whose draft is addressed: a signed-in user or a guest draft id
type Owner struct {
	UserID  uuid.UUID
	DraftID uuid.UUID
}

func (o Owner) key() string {
	if o.UserID != uuid.Nil {
		return "user:" + o.UserID.String()
	}
	return "guest:" + o.DraftID.String()
}

// Service handles booking business logic
type Service struct {
	drafts     *Drafts
	properties property.Repository
	bookings   Repository
	flow       *Flow
}

// NewService creates booking service
func NewService(drafts *Drafts, properties property.Repository, bookings Repository, flow *Flow) *Service {
	return &Service{
		drafts:     drafts,
		properties: properties,
		bookings:   bookings,
		flow:       flow,
	}
}

// GetDraft returns the owner's current draft
func (s *Service) GetDraft(ctx context.Context, owner Owner) Draft {
	return s.drafts.For(ctx, owner.key()).Snapshot()
}

// UpdateDraft applies an edit. A property id replaces the captured snapshot.
func (s *Service) UpdateDraft(ctx context.Context, owner Owner, req *UpdateDraftRequest) (Draft, error) {
	patch, err := patchFrom(req.CheckIn, req.CheckOut, req.Guests)
	if err != nil {
		return Draft{}, err
	}
	if req.PropertyID != nil {
		snap, err := s.properties.GetSnapshot(ctx, *req.PropertyID)
		if err != nil {
			return Draft{}, err
		}
		patch.Property = snap
	}
	return s.drafts.For(ctx, owner.key()).Update(ctx, patch)
}

// Reserve captures a listing into the draft, as when "Reserve" is pressed on it
func (s *Service) Reserve(ctx context.Context, owner Owner, req *ReserveRequest) (Draft, error) {
	patch, err := patchFrom(req.CheckIn, req.CheckOut, req.Guests)
	if err != nil {
		return Draft{}, err
	}
	snap, err := s.properties.GetSnapshot(ctx, req.PropertyID)
	if err != nil {
		return Draft{}, err
	}
	patch.Property = snap
	return s.drafts.For(ctx, owner.key()).Update(ctx, patch)
}

// ClearDraft discards the owner's draft
func (s *Service) ClearDraft(ctx context.Context, owner Owner) {
	s.drafts.For(ctx, owner.key()).Clear(ctx)
}

// Submit runs the submission flow for the owner's draft
func (s *Service) Submit(ctx context.Context, owner Owner, session *Session, req *SubmitRequest) Outcome {
	payment := PaymentSelection{Type: req.PaymentMethodType}
	if req.PaymentMethodID != nil {
		payment.MethodID = *req.PaymentMethodID
	}
	return s.flow.Submit(ctx, SubmitInput{
		Session: session,
		Drafts:  s.drafts.For(ctx, owner.key()),
		Guest: GuestDetails{
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Email:           req.Email,
			Phone:           req.Phone,
			Country:         req.Country,
			Address:         req.Address,
			Password:        req.Password,
			SpecialRequests: req.SpecialRequests,
		},
		Payment: payment,
	})
}

// ListMine returns the user's bookings
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.ListByGuest(ctx, userID, limit, offset)
}

func patchFrom(checkIn, checkOut *string, guests *int) (DraftPatch, error) {
	var patch DraftPatch
	if checkIn != nil {
		t, err := ParseDate(*checkIn)
		if err != nil {
			return patch, fmt.Errorf("check_in: %w", ErrInvalidDates)
		}
		patch.CheckIn = &t
	}
	if checkOut != nil {
		t, err := ParseDate(*checkOut)
		if err != nil {
			return patch, fmt.Errorf("check_out: %w", ErrInvalidDates)
		}
		patch.CheckOut = &t
	}
	patch.Guests = guests
	return patch, nil
}

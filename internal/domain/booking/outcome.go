package booking

// Outcome is the result of a submission attempt. The concrete types are
// Succeeded, ValidationFailed, RateLimited, PaymentMethodRequired,
// DuplicateEmail, AccountCreationFailed and SubmissionFailed.
type Outcome interface {
	outcome()
}

// Succeeded carries the saved booking and, for guests, the new account
type Succeeded struct {
	Booking Summary
	Account *CreatedAccount
}

// ValidationFailed names the first invalid guest field
type ValidationFailed struct {
	Field   string
	Message string
}

type RateLimited struct{}

type PaymentMethodRequired struct{}

// DuplicateEmail means the guest should sign in instead
type DuplicateEmail struct {
	Email string
}

type AccountCreationFailed struct {
	Message string
}

type SubmissionFailed struct {
	Message string
}

func (Succeeded) outcome()             {}
func (ValidationFailed) outcome()      {}
func (RateLimited) outcome()           {}
func (PaymentMethodRequired) outcome() {}
func (DuplicateEmail) outcome()        {}
func (AccountCreationFailed) outcome() {}
func (SubmissionFailed) outcome()      {}

package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredEmailRejectsGarbage(t *testing.T) {
	res := NewFieldValidator().
		ValidateField("email", "not-an-email", Rules{Required: true, Type: TypeEmail}).
		Result()

	assert.False(t, res.IsValid)
	assert.Equal(t, "email is required", res.Errors["email"])
	assert.Equal(t, "", res.SanitizedData["email"])
}

func TestOptionalPhoneIsSanitizedWithoutError(t *testing.T) {
	res := NewFieldValidator().
		ValidateField("phone", "call me!", Rules{Type: TypePhone}).
		ValidateField("phone2", "+1 (555) 010-9999 ext", Rules{Type: TypePhone, MaxLength: 20}).
		Result()

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	// phone sanitizing keeps only digits, spaces, hyphens, parentheses and a leading plus
	assert.Equal(t, "", res.SanitizedData["phone"])
	assert.Equal(t, "+1 (555) 010-9999", res.SanitizedData["phone2"])
}

func TestSanitizedValueKeptOnFailure(t *testing.T) {
	res := NewFieldValidator().
		ValidateField("firstName", "  <b>Al</b> ", Rules{Required: true, MinLength: 5}).
		Result()

	assert.Equal(t, "bAlb", res.SanitizedData["firstName"])
	assert.Equal(t, "firstName must be at least 5 characters", res.Errors["firstName"])
}

func TestPasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Sup3rSecret": true,
		"short1A":     false,
		"alllower12":  false,
		"ALLUPPER12":  false,
		"NoDigitsHere": false,
	}
	for pw, ok := range cases {
		res := NewFieldValidator().ValidateField("password", pw, Rules{Required: true, Type: TypePassword}).Result()
		assert.Equal(t, ok, res.IsValid, "password %q", pw)
		if !ok {
			assert.Equal(t, passwordMessage, res.Errors["password"])
		}
	}
}

func TestLastFailingCheckWins(t *testing.T) {
	custom := func(string) string { return "custom says no" }
	res := NewFieldValidator().
		ValidateField("password", "weak", Rules{Required: true, Type: TypePassword, MinLength: 6, Custom: custom}).
		Result()

	assert.Len(t, res.Errors, 1)
	assert.Equal(t, "custom says no", res.Errors["password"])

	res = NewFieldValidator().
		ValidateField("address", strings.Repeat("a", 250), Rules{MaxLength: 200}).
		Result()
	assert.Equal(t, "address must be no more than 200 characters", res.Errors["address"])
}

func TestRequiredShortCircuits(t *testing.T) {
	called := false
	res := NewFieldValidator().
		ValidateField("lastName", "   ", Rules{Required: true, MinLength: 1, Custom: func(string) string {
			called = true
			return "never"
		}}).
		Result()

	assert.False(t, called)
	assert.Equal(t, "lastName is required", res.Errors["lastName"])
}

func TestEmptyOptionalSkipsChecks(t *testing.T) {
	res := NewFieldValidator().
		ValidateField("address", "", Rules{MinLength: 10, Custom: func(string) string { return "bad" }}).
		Result()

	assert.True(t, res.IsValid)
	_, present := res.SanitizedData["address"]
	assert.True(t, present)
}

func TestFirstErrorFollowsCallOrder(t *testing.T) {
	v := NewFieldValidator()
	v.ValidateField("firstName", "Ann", Rules{Required: true})
	v.ValidateField("lastName", "", Rules{Required: true})
	v.ValidateField("email", "bad", Rules{Required: true, Type: TypeEmail})

	field, msg, ok := v.Result().FirstError()
	require.True(t, ok)
	assert.Equal(t, "lastName", field)
	assert.Equal(t, "lastName is required", msg)

	v.ValidateField("lastName", "Lee", Rules{Required: true})
	field, _, ok = v.Result().FirstError()
	require.True(t, ok)
	assert.Equal(t, "email", field)
}

func TestResultIsACopy(t *testing.T) {
	v := NewFieldValidator()
	v.ValidateField("firstName", "", Rules{Required: true})
	snapshot := v.Result()

	v.ValidateField("lastName", "", Rules{Required: true})
	v.Reset()

	assert.Len(t, snapshot.Errors, 1)
	assert.Contains(t, snapshot.SanitizedData, "firstName")
	assert.NotContains(t, snapshot.Errors, "lastName")

	snapshot.Errors["firstName"] = "mutated"
	assert.True(t, v.Result().IsValid)
	assert.Empty(t, v.Result().SanitizedData)
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	type req struct {
		Type     string `json:"type" validate:"required,payment_method_type"`
		Password string `json:"password" validate:"required,strong_password"`
	}

	errs := Validate(&req{Type: "cash", Password: "weak"})
	assert.Equal(t, "Invalid payment method. Must be: card, crypto, or wire", errs["type"])
	assert.Equal(t, passwordMessage, errs["password"])

	assert.Nil(t, Validate(&req{Type: "card", Password: "Sup3rSecret"}))
}

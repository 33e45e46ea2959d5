package orders

import (
	"testing"

	"github.com/taskerway/dawat-storefront/pkg/config"
)

func validDetails() CustomerDetails {
	return CustomerDetails{
		FullName:      "Priya Sharma",
		Email:         "priya@example.com",
		Phone:         "0412345678",
		StreetAddress: "12 Lygon St",
		Suburb:        "Carlton",
		Postcode:      "3053",
	}
}

func newTestValidator(t *testing.T, prefix string) *Validator {
	t.Helper()
	v, err := NewValidator(config.ValidationConfig{PostcodePrefix: prefix})
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func TestValidateAccepts(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t, "3")
	if errs := v.Validate(validDetails()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t, "3")

	cases := []struct {
		phone string
		ok    bool
	}{
		{"0412345678", true},
		{"+61412345678", true},
		{"0412 345 678", true}, // spaces are stripped before matching
		{"12345", false},
		{"041234567", false},   // 8 digits after the 0
		{"04123456789", false}, // 10 digits after the 0
		{"", false},
	}

	for _, tc := range cases {
		details := validDetails()
		details.Phone = tc.phone
		errs := v.Validate(details)
		if tc.ok && errs["phone"] != "" {
			t.Fatalf("phone %q: unexpected error %q", tc.phone, errs["phone"])
		}
		if !tc.ok && errs["phone"] == "" {
			t.Fatalf("phone %q: expected a phone error", tc.phone)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t, "3")

	details := validDetails()
	details.Email = "not-an-email"
	if errs := v.Validate(details); errs["email"] != "Please enter a valid email" {
		t.Fatalf("expected invalid email message, got %q", errs["email"])
	}

	details.Email = " "
	if errs := v.Validate(details); errs["email"] != "Email is required" {
		t.Fatalf("expected required email message, got %q", errs["email"])
	}
}

func TestValidateBlankFields(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t, "3")

	errs := v.Validate(CustomerDetails{})
	for _, field := range []string{"fullName", "email", "phone", "address", "suburb", "postcode"} {
		if errs[field] == "" {
			t.Fatalf("expected error for blank %s", field)
		}
	}
}

func TestValidatePostcodePrefix(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t, "3")

	details := validDetails()
	details.Postcode = "2000"
	if errs := v.Validate(details); errs["postcode"] == "" {
		t.Fatal("expected postcode outside delivery area to fail")
	}
	details.Postcode = "30000"
	if errs := v.Validate(details); errs["postcode"] == "" {
		t.Fatal("expected five-digit postcode to fail")
	}

	// The delivery area is configuration, not code.
	sydney := newTestValidator(t, "2")
	details.Postcode = "2000"
	if errs := sydney.Validate(details); errs["postcode"] != "" {
		t.Fatalf("expected 2000 to pass with prefix 2, got %q", errs["postcode"])
	}
}

func TestNewValidatorRejectsBadPrefix(t *testing.T) {
	t.Parallel()

	for _, prefix := range []string{"", "abc", "1234"} {
		if _, err := NewValidator(config.ValidationConfig{PostcodePrefix: prefix}); err == nil {
			t.Fatalf("expected prefix %q to be rejected", prefix)
		}
	}
}

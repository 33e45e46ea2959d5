package orders

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taskerway/dawat-storefront/pkg/config"
	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
)

// FieldErrors maps form field name to a user-facing message. Empty means valid.
type FieldErrors map[string]string

var (
	emailRe    = regexp.MustCompile(`\S+@\S+\.\S+`)
	phoneRe    = regexp.MustCompile(`^(\+61|0)[0-9]{9}$`)
	digitsRe   = regexp.MustCompile(`^[0-9]+$`)
	spaceStrip = strings.NewReplacer(" ", "")
)

// Validator applies the delivery-form rules. The postcode area prefix is
// configuration, not code: delivery coverage is a business decision.
type Validator struct {
	prefix     string
	postcodeRe *regexp.Regexp
}

// NewValidator compiles the configured postcode rule.
func NewValidator(cfg config.ValidationConfig) (*Validator, error) {
	prefix := strings.TrimSpace(cfg.PostcodePrefix)
	if prefix == "" || !digitsRe.MatchString(prefix) || len(prefix) >= 4 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "postcode prefix must be 1-3 digits")
	}
	re, err := regexp.Compile(fmt.Sprintf(`^%s[0-9]{%d}$`, prefix, 4-len(prefix)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compile postcode rule")
	}
	return &Validator{prefix: prefix, postcodeRe: re}, nil
}

// Validate is pure: no side effects, one message per failing field.
func (v *Validator) Validate(details CustomerDetails) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(details.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}

	if strings.TrimSpace(details.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailRe.MatchString(details.Email) {
		errs["email"] = "Please enter a valid email"
	}

	if strings.TrimSpace(details.Phone) == "" {
		errs["phone"] = "Phone number is required"
	} else if !phoneRe.MatchString(spaceStrip.Replace(details.Phone)) {
		errs["phone"] = "Please enter a valid Australian phone number"
	}

	if strings.TrimSpace(details.StreetAddress) == "" {
		errs["address"] = "Address is required"
	}

	if strings.TrimSpace(details.Suburb) == "" {
		errs["suburb"] = "Suburb is required"
	}

	if strings.TrimSpace(details.Postcode) == "" {
		errs["postcode"] = "Postcode is required"
	} else if !v.postcodeRe.MatchString(details.Postcode) {
		shape := v.prefix + strings.Repeat("x", 4-len(v.prefix))
		errs["postcode"] = fmt.Sprintf("Please enter a valid delivery postcode (%s)", shape)
	}

	return errs
}

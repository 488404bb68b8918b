package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smartcommerce/storefront/internal/user"
)

var (
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	gstinPattern   = regexp.MustCompile(`^(?i)[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

// Form is everything the checkout page collects before placing an order.
type Form struct {
	FullName     string `validate:"required"`
	Phone        string `validate:"required,inphone"`
	Pincode      string `validate:"required,inpincode"`
	AddressLine1 string `validate:"required"`
	AddressLine2 string
	City         string `validate:"required"`
	State        string `validate:"required"`
	Landmark     string
	AddressType  string

	PaymentMethod PaymentMethod `validate:"required,oneof=upi card netbanking cod"`

	AddGST       bool
	GSTIN        string `validate:"required_if=AddGST true,omitempty,gstin"`
	BusinessName string `validate:"required_if=AddGST true"`

	WhatsappUpdates bool
}

// ValidationError is a pre-network form failure with a message fit for a
// toast.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout: %s", e.Message)
}

func newFormValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs; safe to ignore.
	_ = v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("inpincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return gstinPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "FullName":
		return "Please enter full name."
	case "Phone":
		return "Enter a valid 10-digit mobile number."
	case "Pincode":
		return "Enter a valid 6-digit pincode."
	case "AddressLine1":
		return "Address line is required."
	case "City", "State":
		return "City and State are required."
	case "GSTIN":
		return "Enter a valid GSTIN."
	case "BusinessName":
		return "Business name is required for GST invoice."
	case "PaymentMethod":
		return "Select a payment method."
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}

// PrefillFrom maps a saved address onto the form the way the checkout page
// pre-fills its top section.
func (f *Form) PrefillFrom(name, phone string, addr *user.Address) {
	if name != "" {
		f.FullName = name
	}
	if phone != "" {
		f.Phone = phone
	}
	if addr == nil {
		return
	}
	f.Pincode = addr.PinCode
	parts := make([]string, 0, 2)
	if addr.HouseNo != "" {
		parts = append(parts, addr.HouseNo)
	}
	if addr.Area != "" {
		parts = append(parts, addr.Area)
	}
	f.AddressLine1 = strings.Join(parts, ", ")
	f.AddressLine2 = addr.Landmark
	f.Landmark = addr.Landmark
	f.City = addr.City
	f.State = addr.State
	if f.AddressType == "" {
		f.AddressType = "home"
	}
}

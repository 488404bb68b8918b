package checkout_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcommerce/storefront/internal/checkout"
	"github.com/smartcommerce/storefront/internal/user"
)

func validForm() checkout.Form {
	return checkout.Form{
		FullName:      "Asha Verma",
		Phone:         "9876543210",
		Pincode:       "560001",
		AddressLine1:  "12, MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		AddressType:   "home",
		PaymentMethod: checkout.MethodUPI,
	}
}

func TestCheckout_Validate(t *testing.T) {
	c := checkout.New(nil, nil, nil, nil, checkout.DefaultRates)

	tests := []struct {
		name    string
		mutate  func(*checkout.Form)
		wantMsg string
	}{
		{
			name:   "valid_form",
			mutate: func(f *checkout.Form) {},
		},
		{
			name:    "empty_name",
			mutate:  func(f *checkout.Form) { f.FullName = "" },
			wantMsg: "Please enter full name.",
		},
		{
			name:    "phone_not_starting_6_to_9",
			mutate:  func(f *checkout.Form) { f.Phone = "5876543210" },
			wantMsg: "Enter a valid 10-digit mobile number.",
		},
		{
			name:    "phone_too_short",
			mutate:  func(f *checkout.Form) { f.Phone = "98765" },
			wantMsg: "Enter a valid 10-digit mobile number.",
		},
		{
			name:    "phone_with_letters",
			mutate:  func(f *checkout.Form) { f.Phone = "98765abcde" },
			wantMsg: "Enter a valid 10-digit mobile number.",
		},
		{
			name:    "pincode_too_short",
			mutate:  func(f *checkout.Form) { f.Pincode = "5600" },
			wantMsg: "Enter a valid 6-digit pincode.",
		},
		{
			name:    "pincode_with_letters",
			mutate:  func(f *checkout.Form) { f.Pincode = "56000a" },
			wantMsg: "Enter a valid 6-digit pincode.",
		},
		{
			name:    "empty_address_line",
			mutate:  func(f *checkout.Form) { f.AddressLine1 = "" },
			wantMsg: "Address line is required.",
		},
		{
			name:    "empty_city",
			mutate:  func(f *checkout.Form) { f.City = "" },
			wantMsg: "City and State are required.",
		},
		{
			name:    "empty_state",
			mutate:  func(f *checkout.Form) { f.State = "" },
			wantMsg: "City and State are required.",
		},
		{
			name: "gst_requested_invalid_gstin",
			mutate: func(f *checkout.Form) {
				f.AddGST = true
				f.GSTIN = "not-a-gstin"
				f.BusinessName = "Acme Traders"
			},
			wantMsg: "Enter a valid GSTIN.",
		},
		{
			name: "gst_requested_missing_business_name",
			mutate: func(f *checkout.Form) {
				f.AddGST = true
				f.GSTIN = "29ABCDE1234F1Z5"
			},
			wantMsg: "Business name is required for GST invoice.",
		},
		{
			name: "gst_valid",
			mutate: func(f *checkout.Form) {
				f.AddGST = true
				f.GSTIN = "29ABCDE1234F1Z5"
				f.BusinessName = "Acme Traders"
			},
		},
		{
			name:   "gst_fields_not_required_without_flag",
			mutate: func(f *checkout.Form) { f.GSTIN = ""; f.BusinessName = "" },
		},
		{
			name:    "unknown_payment_method",
			mutate:  func(f *checkout.Form) { f.PaymentMethod = "cheque" },
			wantMsg: "Select a payment method.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := c.Validate(f)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *checkout.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantMsg, vErr.Message)
		})
	}
}

func TestForm_PrefillFrom(t *testing.T) {
	var f checkout.Form
	f.PrefillFrom("Asha Verma", "9876543210", &user.Address{
		HouseNo:  "12",
		Area:     "MG Road",
		Landmark: "Near Metro",
		City:     "Bengaluru",
		State:    "Karnataka",
		PinCode:  "560001",
	})

	assert.Equal(t, "Asha Verma", f.FullName)
	assert.Equal(t, "9876543210", f.Phone)
	assert.Equal(t, "12, MG Road", f.AddressLine1)
	assert.Equal(t, "Near Metro", f.AddressLine2)
	assert.Equal(t, "560001", f.Pincode)
	assert.Equal(t, "Bengaluru", f.City)
	assert.Equal(t, "home", f.AddressType)
}

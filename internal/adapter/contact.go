package adapter

import (
	"strings"

	"github.com/benithors/regbridge/internal/registrar"
)

// Contact field keys as the host displays them.
const (
	KeyFirstName   = "First Name"
	KeyLastName    = "Last Name"
	KeyCompanyName = "Company Name"
	KeyEmail       = "Email Address"
	KeyAddress1    = "Address 1"
	KeyAddress2    = "Address 2"
	KeyCity        = "City"
	KeyState       = "State"
	KeyPostcode    = "Postcode"
	KeyCountry     = "Country"
	KeyPhone       = "Phone Number"
	KeyFax         = "Fax Number"
)

// ContactKeys lists every key FormatContact emits, in display order.
var ContactKeys = []string{
	KeyFirstName, KeyLastName, KeyCompanyName, KeyEmail,
	KeyAddress1, KeyAddress2, KeyCity, KeyState,
	KeyPostcode, KeyCountry, KeyPhone, KeyFax,
}

// Contact roles in the order the host lists them.
const (
	RoleRegistrant = "Registrant"
	RoleAdmin      = "Admin"
	RoleTechnical  = "Technical"
	RoleBilling    = "Billing"
)

// FormatContact flattens a registrar contact into the host's fixed field set.
// Absent values become "".
func FormatContact(c registrar.Contact) map[string]string {
	return map[string]string{
		KeyFirstName:   deref(c.FirstName),
		KeyLastName:    deref(c.LastName),
		KeyCompanyName: deref(c.Organization),
		KeyEmail:       deref(c.Email),
		KeyAddress1:    deref(c.Address1),
		KeyAddress2:    deref(c.Address2),
		KeyCity:        deref(c.City),
		KeyState:       deref(c.State),
		KeyPostcode:    deref(c.PostalCode),
		KeyCountry:     deref(c.CountryCode),
		KeyPhone:       NormalizePhone(deref(c.Phone)),
		KeyFax:         NormalizePhone(deref(c.Fax)),
	}
}

// NormalizePhone keeps digits and '+' and makes sure a non-empty number starts
// with '+'.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone) + 1)
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out != "" && out[0] != '+' {
		out = "+" + out
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package spaceship

import (
	"strings"

	"github.com/benithors/regbridge/internal/registrar"
)

type domainInfo struct {
	Name             string   `json:"name"`
	UnicodeName      string   `json:"unicodeName"`
	IsPremium        bool     `json:"isPremium"`
	AutoRenew        bool     `json:"autoRenew"`
	RegistrationDate string   `json:"registrationDate"`
	ExpirationDate   string   `json:"expirationDate"`
	LifecycleStatus  string   `json:"lifecycleStatus"`
	EPPStatuses      []string `json:"eppStatuses"`

	PrivacyProtection struct {
		ContactForm bool   `json:"contactForm"`
		Level       string `json:"level"`
	} `json:"privacyProtection"`

	Nameservers struct {
		Provider string   `json:"provider"`
		Hosts    []string `json:"hosts"`
	} `json:"nameservers"`

	Contacts contactRoles `json:"contacts"`
}

func (d domainInfo) toDomain() registrar.Domain {
	out := registrar.Domain{
		Name:           d.Name,
		Nameservers:    append([]string(nil), d.Nameservers.Hosts...),
		TransferLocked: hasStatus(d.EPPStatuses, eppTransferProhibited),
		ExpirationDate: d.ExpirationDate,
		RegistrantID:   d.Contacts.Registrant,
		AdminID:        d.Contacts.Admin,
		TechID:         d.Contacts.Tech,
		BillingID:      d.Contacts.Billing,
	}

	switch strings.ToLower(strings.TrimSpace(d.LifecycleStatus)) {
	case "registered":
		out.Active = boolPtr(true)
		out.Expired = boolPtr(false)
	case "grace1", "grace2", "redemption":
		out.Active = boolPtr(false)
		out.Expired = boolPtr(true)
	}
	return out
}

type contactRoles struct {
	Registrant string `json:"registrant"`
	Admin      string `json:"admin,omitempty"`
	Tech       string `json:"tech,omitempty"`
	Billing    string `json:"billing,omitempty"`
}

type contact struct {
	ContactID     string `json:"contactId,omitempty"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Organization  string `json:"organization,omitempty"`
	Email         string `json:"email"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2,omitempty"`
	City          string `json:"city"`
	Country       string `json:"country"`
	StateProvince string `json:"stateProvince,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Phone         string `json:"phone"`
	PhoneExt      string `json:"phoneExt,omitempty"`
	Fax           string `json:"fax,omitempty"`
	FaxExt        string `json:"faxExt,omitempty"`
}

// toContact keeps empty strings as absent values.
func (c contact) toContact() registrar.Contact {
	return registrar.Contact{
		ID:           c.ContactID,
		FirstName:    optional(c.FirstName),
		LastName:     optional(c.LastName),
		Organization: optional(c.Organization),
		Email:        optional(c.Email),
		Address1:     optional(c.Address1),
		Address2:     optional(c.Address2),
		City:         optional(c.City),
		State:        optional(c.StateProvince),
		PostalCode:   optional(c.PostalCode),
		CountryCode:  optional(c.Country),
		Phone:        optional(c.Phone),
		Fax:          optional(c.Fax),
	}
}

type nameserversRequest struct {
	Provider string   `json:"provider"`
	Hosts    []string `json:"hosts"`
}

type transferLockRequest struct {
	IsLocked bool `json:"isLocked"`
}

type privacyRequest struct {
	PrivacyLevel string `json:"privacyLevel"`
	UserConsent  bool   `json:"userConsent"`
}

type createContactResponse struct {
	ContactID string `json:"contactId"`
}

type authCodeResponse struct {
	AuthCode *string `json:"authCode"`
	Expires  string  `json:"expires,omitempty"`
}

type apiError struct {
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail"`
	Data   []struct {
		Field   string `json:"field"`
		Details string `json:"details"`
	} `json:"data,omitempty"`
}

func hasStatus(statuses []string, want string) bool {
	for _, s := range statuses {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolPtr(v bool) *bool { return &v }

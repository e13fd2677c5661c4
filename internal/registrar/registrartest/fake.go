// Package registrartest provides an in-memory registrar.Client for tests.
package registrartest

import (
	"context"
	"fmt"
	"sync"

	"github.com/benithors/regbridge/internal/registrar"
)

// Fake keeps domains and contacts in memory. Set Fail[method] to make that
// method return an upstream error with the given message.
type Fake struct {
	mu       sync.Mutex
	Domains  map[string]*registrar.Domain
	Contacts map[string]registrar.Contact
	Auth     map[string]string
	Privacy  map[string]registrar.PrivacyLevel
	Fail     map[string]string

	// Calls records method names in call order.
	Calls []string

	nextID int
}

var _ registrar.Client = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Domains:  map[string]*registrar.Domain{},
		Contacts: map[string]registrar.Contact{},
		Auth:     map[string]string{},
		Privacy:  map[string]registrar.PrivacyLevel{},
		Fail:     map[string]string{},
	}
}

// Factory returns a registrar.Factory that hands out f for any credentials
// with a non-empty key, and an upstream error otherwise.
func (f *Fake) Factory() registrar.Factory {
	return func(creds registrar.Credentials) (registrar.Client, error) {
		if creds.APIKey == "" {
			return nil, registrar.Errorf("fake", "missing api key")
		}
		return f, nil
	}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) enter(method string) error {
	f.Calls = append(f.Calls, method)
	if msg, ok := f.Fail[method]; ok {
		return registrar.Errorf("fake", "%s", msg)
	}
	return nil
}

func (f *Fake) domain(fqdn string) (*registrar.Domain, error) {
	d, ok := f.Domains[fqdn]
	if !ok {
		return nil, registrar.Errorf("fake", "Domain %s not found", fqdn)
	}
	return d, nil
}

func (f *Fake) FetchDomain(_ context.Context, fqdn string) (registrar.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("FetchDomain"); err != nil {
		return registrar.Domain{}, err
	}
	d, err := f.domain(fqdn)
	if err != nil {
		return registrar.Domain{}, err
	}
	out := *d
	out.Nameservers = append([]string(nil), d.Nameservers...)
	return out, nil
}

func (f *Fake) FetchContact(_ context.Context, id string) (registrar.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("FetchContact"); err != nil {
		return registrar.Contact{}, err
	}
	c, ok := f.Contacts[id]
	if !ok {
		return registrar.Contact{}, registrar.Errorf("fake", "Contact %s not found", id)
	}
	return c, nil
}

func (f *Fake) UpdateNameservers(_ context.Context, fqdn string, p registrar.NameserverParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateNameservers"); err != nil {
		return err
	}
	d, err := f.domain(fqdn)
	if err != nil {
		return err
	}
	d.Nameservers = append([]string(nil), p.Hosts...)
	return nil
}

func (f *Fake) UpdateTransferLock(_ context.Context, fqdn string, p registrar.TransferLockParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateTransferLock"); err != nil {
		return err
	}
	d, err := f.domain(fqdn)
	if err != nil {
		return err
	}
	d.TransferLocked = p.Locked
	return nil
}

func (f *Fake) UpdatePrivacy(_ context.Context, fqdn string, p registrar.PrivacyParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdatePrivacy"); err != nil {
		return err
	}
	if _, err := f.domain(fqdn); err != nil {
		return err
	}
	f.Privacy[fqdn] = p.Level
	return nil
}

func (f *Fake) CreateContact(_ context.Context, p registrar.ContactParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateContact"); err != nil {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("contact-%d", f.nextID)
	f.Contacts[id] = registrar.Contact{
		ID:           id,
		FirstName:    optional(p.FirstName),
		LastName:     optional(p.LastName),
		Organization: optional(p.Organization),
		Email:        optional(p.Email),
		Address1:     optional(p.Address1),
		Address2:     optional(p.Address2),
		City:         optional(p.City),
		State:        optional(p.State),
		PostalCode:   optional(p.PostalCode),
		CountryCode:  optional(p.CountryCode),
		Phone:        optional(p.Phone),
	}
	return id, nil
}

func (f *Fake) UpdateContactRoles(_ context.Context, fqdn string, p registrar.ContactRoles) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateContactRoles"); err != nil {
		return err
	}
	d, err := f.domain(fqdn)
	if err != nil {
		return err
	}
	d.RegistrantID = p.Registrant
	d.AdminID = p.Admin
	d.TechID = p.Tech
	d.BillingID = p.Billing
	return nil
}

func (f *Fake) FetchAuthCode(_ context.Context, fqdn string) (registrar.AuthCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("FetchAuthCode"); err != nil {
		return registrar.AuthCode{}, err
	}
	if _, err := f.domain(fqdn); err != nil {
		return registrar.AuthCode{}, err
	}
	code, ok := f.Auth[fqdn]
	if !ok {
		return registrar.AuthCode{}, nil
	}
	return registrar.AuthCode{Code: &code}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

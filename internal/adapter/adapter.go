// Package adapter maps host-level registrar operations onto a registrar.Client
// and normalizes every outcome into a Result.
//
// Each operation owns a single failure boundary: whatever goes wrong in its
// upstream calls, the caller receives one error-shaped Result carrying the
// upstream message and no partial data.
package adapter

import (
	"context"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/benithors/regbridge/internal/domain"
	"github.com/benithors/regbridge/internal/registrar"
)

// MaxNameservers is the number of nameserver slots the host understands.
const MaxNameservers = 5

const (
	msgNoNameservers     = "No nameservers found for this domain"
	msgNameserversFailed = "Could not process nameserver information"
)

// DomainRef identifies a domain the way the host passes it.
type DomainRef struct {
	SLD string
	TLD string
}

func (d DomainRef) FQDN() string { return domain.FQDN(d.SLD, d.TLD) }

// ContactDetails is the contact the host submits when updating a domain.
type ContactDetails struct {
	FirstName   string
	LastName    string
	CompanyName string
	Email       string
	Address1    string
	Address2    string
	City        string
	State       string
	CountryCode string
	Postcode    string
	Phone       string
}

type Adapter struct {
	client registrar.Client
	log    log.FieldLogger
}

type Option func(*Adapter)

func WithLogger(l log.FieldLogger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

func New(client registrar.Client, opts ...Option) *Adapter {
	a := &Adapter{
		client: client,
		log:    log.StandardLogger(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// FetchNameservers returns ns1..ns5 in registrar order.
func (a *Adapter) FetchNameservers(ctx context.Context, d DomainRef) Result {
	info, err := a.client.FetchDomain(ctx, d.FQDN())
	if err != nil {
		return a.fail("FetchNameservers", d, err)
	}
	if len(info.Nameservers) == 0 {
		return Fail(msgNoNameservers)
	}

	fields := make(map[string]any, MaxNameservers)
	slot := 0
	for _, ns := range info.Nameservers {
		ns = strings.TrimSpace(ns)
		if ns == "" {
			continue
		}
		slot++
		if slot > MaxNameservers {
			break
		}
		fields[nsKey(slot)] = ns
	}
	if len(fields) == 0 {
		return Fail(msgNameserversFailed)
	}
	return Succeed(fields)
}

// SaveNameservers replaces the domain's nameservers with the non-blank slots,
// in slot order.
func (a *Adapter) SaveNameservers(ctx context.Context, d DomainRef, slots [MaxNameservers]string) Result {
	hosts := make([]string, 0, MaxNameservers)
	for _, ns := range slots {
		if ns = strings.TrimSpace(ns); ns != "" {
			hosts = append(hosts, ns)
		}
	}

	err := a.client.UpdateNameservers(ctx, d.FQDN(), registrar.NameserverParams{
		Provider: registrar.NameserverProviderCustom,
		Hosts:    hosts,
	})
	if err != nil {
		return a.fail("SaveNameservers", d, err)
	}
	return succeeded()
}

func (a *Adapter) FetchRegistrarLock(ctx context.Context, d DomainRef) LockResult {
	info, err := a.client.FetchDomain(ctx, d.FQDN())
	if err != nil {
		return LockResult{State: LockFailed, Message: a.fail("FetchRegistrarLock", d, err).Error()}
	}
	if info.TransferLocked {
		return LockResult{State: LockLocked}
	}
	return LockResult{State: LockUnlocked}
}

func (a *Adapter) SetRegistrarLock(ctx context.Context, d DomainRef, locked bool) Result {
	err := a.client.UpdateTransferLock(ctx, d.FQDN(), registrar.TransferLockParams{Locked: locked})
	if err != nil {
		return a.fail("SetRegistrarLock", d, err)
	}
	return succeeded()
}

// FetchContacts returns the four contact roles. A role without a contact maps
// to an empty field set.
func (a *Adapter) FetchContacts(ctx context.Context, d DomainRef) Result {
	info, err := a.client.FetchDomain(ctx, d.FQDN())
	if err != nil {
		return a.fail("FetchContacts", d, err)
	}

	roles := []struct {
		name string
		id   string
	}{
		{RoleRegistrant, info.RegistrantID},
		{RoleAdmin, info.AdminID},
		{RoleTechnical, info.TechID},
		{RoleBilling, info.BillingID},
	}

	fields := make(map[string]any, len(roles))
	for _, role := range roles {
		if strings.TrimSpace(role.id) == "" {
			fields[role.name] = map[string]string{}
			continue
		}
		c, err := a.client.FetchContact(ctx, role.id)
		if err != nil {
			return a.fail("FetchContacts", d, err)
		}
		fields[role.name] = FormatContact(c)
	}
	return Succeed(fields)
}

func (a *Adapter) FetchAuthCode(ctx context.Context, d DomainRef) Result {
	ac, err := a.client.FetchAuthCode(ctx, d.FQDN())
	if err != nil {
		return a.fail("FetchAuthCode", d, err)
	}
	return Succeed(map[string]any{
		"success": true,
		"eppcode": deref(ac.Code),
	})
}

func (a *Adapter) SetPrivacyProtection(ctx context.Context, d DomainRef, enable bool) Result {
	level := registrar.PrivacyLevelPublic
	if enable {
		level = registrar.PrivacyLevelHigh
	}
	if err := a.client.UpdatePrivacy(ctx, d.FQDN(), registrar.PrivacyParams{Level: level}); err != nil {
		return a.fail("SetPrivacyProtection", d, err)
	}
	return succeeded()
}

// UpdateContacts creates one contact from c and assigns it to every role.
func (a *Adapter) UpdateContacts(ctx context.Context, d DomainRef, c ContactDetails) Result {
	id, err := a.client.CreateContact(ctx, registrar.ContactParams{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Organization: c.CompanyName,
		Email:        c.Email,
		Address1:     c.Address1,
		Address2:     c.Address2,
		City:         c.City,
		State:        c.State,
		CountryCode:  c.CountryCode,
		PostalCode:   c.Postcode,
		Phone:        c.Phone,
	})
	if err != nil {
		return a.fail("UpdateContacts", d, err)
	}

	err = a.client.UpdateContactRoles(ctx, d.FQDN(), registrar.ContactRoles{
		Registrant: id,
		Admin:      id,
		Tech:       id,
		Billing:    id,
	})
	if err != nil {
		return a.fail("UpdateContacts", d, err)
	}
	return succeeded()
}

// SyncStatus reports expiry and activity. Missing flags default to active and
// not expired; a domain is never reported as transferred away.
func (a *Adapter) SyncStatus(ctx context.Context, d DomainRef) Result {
	info, err := a.client.FetchDomain(ctx, d.FQDN())
	if err != nil {
		return a.fail("SyncStatus", d, err)
	}

	active := true
	if info.Active != nil {
		active = *info.Active
	}
	expired := false
	if info.Expired != nil {
		expired = *info.Expired
	}

	return Succeed(map[string]any{
		"expirydate":      FormatExpiry(info.ExpirationDate),
		"active":          active,
		"expired":         expired,
		"transferredAway": false,
	})
}

// FormatExpiry renders RFC 3339 timestamps as YYYY-MM-DD and passes anything
// else through.
func FormatExpiry(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	return s
}

func (a *Adapter) fail(op string, d DomainRef, err error) Result {
	msg := registrar.Message(err)
	a.log.WithFields(log.Fields{
		"operation": op,
		"domain":    d.FQDN(),
		"registrar": a.client.Name(),
	}).Warn(msg)
	return Fail(msg)
}

func succeeded() Result {
	return Succeed(map[string]any{"success": true})
}

func nsKey(slot int) string {
	return "ns" + strconv.Itoa(slot)
}

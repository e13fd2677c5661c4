package registrar

import (
	"context"
	"errors"
	"fmt"
)

// Client is the registrar API surface the adapter depends on. Implementations
// report every failure as an error; callers only rely on its message.
type Client interface {
	Name() string
	FetchDomain(ctx context.Context, fqdn string) (Domain, error)
	FetchContact(ctx context.Context, id string) (Contact, error)
	UpdateNameservers(ctx context.Context, fqdn string, p NameserverParams) error
	UpdateTransferLock(ctx context.Context, fqdn string, p TransferLockParams) error
	UpdatePrivacy(ctx context.Context, fqdn string, p PrivacyParams) error
	CreateContact(ctx context.Context, p ContactParams) (string, error)
	UpdateContactRoles(ctx context.Context, fqdn string, p ContactRoles) error
	FetchAuthCode(ctx context.Context, fqdn string) (AuthCode, error)
}

// Credentials identify an account at the registrar.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Factory builds a fresh client for one host invocation.
type Factory func(Credentials) (Client, error)

type Domain struct {
	Name           string
	Nameservers    []string
	TransferLocked bool
	ExpirationDate string

	RegistrantID string
	AdminID      string
	TechID       string
	BillingID    string

	// Nil when the registrar does not say.
	Active  *bool
	Expired *bool
}

// Contact mirrors the registrar's contact record. Absent fields are nil.
type Contact struct {
	ID           string
	FirstName    *string
	LastName     *string
	Organization *string
	Email        *string
	Address1     *string
	Address2     *string
	City         *string
	State        *string
	PostalCode   *string
	CountryCode  *string
	Phone        *string
	Fax          *string
}

type NameserverProvider string

const (
	NameserverProviderBasic  NameserverProvider = "basic"
	NameserverProviderCustom NameserverProvider = "custom"
)

type NameserverParams struct {
	Provider NameserverProvider
	Hosts    []string
}

type TransferLockParams struct {
	Locked bool
}

type PrivacyLevel string

const (
	PrivacyLevelPublic PrivacyLevel = "public"
	PrivacyLevelHigh   PrivacyLevel = "high"
)

type PrivacyParams struct {
	Level PrivacyLevel
}

type ContactParams struct {
	FirstName    string
	LastName     string
	Organization string
	Email        string
	Address1     string
	Address2     string
	City         string
	State        string
	CountryCode  string
	PostalCode   string
	Phone        string
}

// ContactRoles assigns contact IDs to the four domain roles.
type ContactRoles struct {
	Registrant string
	Admin      string
	Tech       string
	Billing    string
}

type AuthCode struct {
	Code    *string
	Expires string
}

// Error is the single failure type reported by registrar clients.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error for provider with a formatted message.
func Errorf(provider, format string, args ...any) *Error {
	return &Error{Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// Message extracts the human-readable message carried by err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}

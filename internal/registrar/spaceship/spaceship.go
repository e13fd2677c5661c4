package spaceship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/benithors/regbridge/internal/registrar"
)

const (
	DefaultBaseURL = "https://spaceship.dev/api"
	providerName   = "spaceship"

	eppTransferProhibited = "clientTransferProhibited"
)

type Options struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration

	// Client-side pacing; Spaceship rate-limits per account. Clients built by
	// one factory share pacing per API key.
	MinDelay      time.Duration
	MaxConcurrent int
	UserAgent     string
}

type Client struct {
	opts  Options
	http  *http.Client
	pacer *pacer
}

// pacer bounds concurrency and spaces request starts for one account.
type pacer struct {
	minDelay time.Duration
	sem      chan struct{}

	mu            sync.Mutex
	nextRequestAt time.Time
}

func newPacer(minDelay time.Duration, maxConcurrent int) *pacer {
	return &pacer{
		minDelay: minDelay,
		sem:      make(chan struct{}, maxConcurrent),
	}
}

var _ registrar.Client = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	return newClient(opts, nil)
}

func newClient(opts Options, p *pacer) (*Client, error) {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	opts.APISecret = strings.TrimSpace(opts.APISecret)
	if opts.APIKey == "" || opts.APISecret == "" {
		return nil, registrar.Errorf(providerName, "spaceship: missing api credentials (set ApiKey and ApiSecret)")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MinDelay < 0 {
		opts.MinDelay = 0
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "regbridge/registrar-spaceship"
	}

	if p == nil {
		p = newPacer(opts.MinDelay, opts.MaxConcurrent)
	}
	return &Client{
		opts:  opts,
		http:  &http.Client{Timeout: opts.Timeout},
		pacer: p,
	}, nil
}

// NewFactory returns a registrar.Factory that builds clients sharing base.
// Credentials passed to the factory replace the ones in base. Clients for the
// same API key share one pacer, so MinDelay and MaxConcurrent hold across
// calls.
func NewFactory(base Options) registrar.Factory {
	var mu sync.Mutex
	pacers := map[string]*pacer{}

	return func(creds registrar.Credentials) (registrar.Client, error) {
		opts := base
		opts.APIKey = creds.APIKey
		opts.APISecret = creds.APISecret

		key := strings.TrimSpace(creds.APIKey)
		if key == "" {
			return NewClient(opts)
		}
		mu.Lock()
		p, ok := pacers[key]
		if !ok {
			p = newPacer(max(base.MinDelay, 0), max(base.MaxConcurrent, 1))
			pacers[key] = p
		}
		mu.Unlock()
		return newClient(opts, p)
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) FetchDomain(ctx context.Context, fqdn string) (registrar.Domain, error) {
	var info domainInfo
	if err := c.do(ctx, http.MethodGet, "/v1/domains/"+url.PathEscape(fqdn), nil, &info); err != nil {
		return registrar.Domain{}, err
	}
	return info.toDomain(), nil
}

func (c *Client) FetchContact(ctx context.Context, id string) (registrar.Contact, error) {
	var ct contact
	if err := c.do(ctx, http.MethodGet, "/v1/contacts/"+url.PathEscape(id), nil, &ct); err != nil {
		return registrar.Contact{}, err
	}
	out := ct.toContact()
	if out.ID == "" {
		out.ID = id
	}
	return out, nil
}

func (c *Client) UpdateNameservers(ctx context.Context, fqdn string, p registrar.NameserverParams) error {
	provider := p.Provider
	if provider == "" {
		provider = registrar.NameserverProviderCustom
	}
	hosts := p.Hosts
	if hosts == nil {
		hosts = []string{}
	}
	body := nameserversRequest{Provider: string(provider), Hosts: hosts}
	return c.do(ctx, http.MethodPut, "/v1/domains/"+url.PathEscape(fqdn)+"/nameservers", body, nil)
}

func (c *Client) UpdateTransferLock(ctx context.Context, fqdn string, p registrar.TransferLockParams) error {
	body := transferLockRequest{IsLocked: p.Locked}
	return c.do(ctx, http.MethodPut, "/v1/domains/"+url.PathEscape(fqdn)+"/transfer/lock", body, nil)
}

func (c *Client) UpdatePrivacy(ctx context.Context, fqdn string, p registrar.PrivacyParams) error {
	level := p.Level
	if level == "" {
		level = registrar.PrivacyLevelPublic
	}
	body := privacyRequest{PrivacyLevel: string(level), UserConsent: true}
	return c.do(ctx, http.MethodPut, "/v1/domains/"+url.PathEscape(fqdn)+"/privacy/preference", body, nil)
}

func (c *Client) CreateContact(ctx context.Context, p registrar.ContactParams) (string, error) {
	body := contact{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Organization:  p.Organization,
		Email:         p.Email,
		Address1:      p.Address1,
		Address2:      p.Address2,
		City:          p.City,
		StateProvince: p.State,
		Country:       p.CountryCode,
		PostalCode:    p.PostalCode,
		Phone:         p.Phone,
	}
	var resp createContactResponse
	if err := c.do(ctx, http.MethodPut, "/v1/contacts", body, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.ContactID) == "" {
		return "", registrar.Errorf(providerName, "spaceship: contact created without id")
	}
	return resp.ContactID, nil
}

func (c *Client) UpdateContactRoles(ctx context.Context, fqdn string, p registrar.ContactRoles) error {
	body := contactRoles{
		Registrant: p.Registrant,
		Admin:      p.Admin,
		Tech:       p.Tech,
		Billing:    p.Billing,
	}
	return c.do(ctx, http.MethodPut, "/v1/domains/"+url.PathEscape(fqdn)+"/contacts", body, nil)
}

func (c *Client) FetchAuthCode(ctx context.Context, fqdn string) (registrar.AuthCode, error) {
	var resp authCodeResponse
	if err := c.do(ctx, http.MethodGet, "/v1/domains/"+url.PathEscape(fqdn)+"/transfer/auth-code", nil, &resp); err != nil {
		return registrar.AuthCode{}, err
	}
	return registrar.AuthCode{Code: resp.AuthCode, Expires: resp.Expires}, nil
}

// do sends one request and decodes a 2xx body into out (when non-nil). Every
// failure is returned as *registrar.Error.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	select {
	case c.pacer.sem <- struct{}{}:
		defer func() { <-c.pacer.sem }()
	case <-ctx.Done():
		return c.fail(0, ctx.Err(), "spaceship: %v", ctx.Err())
	}

	if err := c.pacer.wait(ctx); err != nil {
		return c.fail(0, err, "spaceship: %v", err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return c.fail(0, err, "spaceship: encode request: %v", err)
		}
		body = bytes.NewReader(b)
	}

	u := strings.TrimRight(c.opts.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return c.fail(0, err, "spaceship: %v", err)
	}
	if in != nil {
		req.Header.Set("content-type", "application/json")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", c.opts.UserAgent)
	req.Header.Set("X-API-Key", c.opts.APIKey)
	req.Header.Set("X-API-Secret", c.opts.APISecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(0, errors.Wrapf(err, "%s %s", method, path), "spaceship: %v", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.fail(resp.StatusCode, err, "spaceship: read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(resp.StatusCode, nil, "%s", apiErrorMessage(resp.StatusCode, b))
	}

	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return c.fail(resp.StatusCode, err, "spaceship: decode error: %v", err)
	}
	return nil
}

func (c *Client) fail(status int, cause error, format string, args ...any) error {
	return &registrar.Error{
		Provider:   providerName,
		StatusCode: status,
		Message:    fmt.Sprintf(format, args...),
		Err:        cause,
	}
}

// wait blocks until the next request slot.
func (p *pacer) wait(ctx context.Context) error {
	if p.minDelay <= 0 {
		return nil
	}

	p.mu.Lock()
	now := time.Now()
	scheduled := now
	if scheduled.Before(p.nextRequestAt) {
		scheduled = p.nextRequestAt
	}
	p.nextRequestAt = scheduled.Add(p.minDelay)
	p.mu.Unlock()

	wait := time.Until(scheduled)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// apiErrorMessage pulls the human-readable part out of an error body.
func apiErrorMessage(status int, b []byte) string {
	var decoded apiError
	if err := json.Unmarshal(b, &decoded); err == nil {
		msg := strings.TrimSpace(decoded.Detail)
		if msg == "" {
			msg = strings.TrimSpace(decoded.Title)
		}
		if msg != "" {
			var fields []string
			for _, d := range decoded.Data {
				if d.Field != "" && d.Details != "" {
					fields = append(fields, d.Field+": "+d.Details)
				}
			}
			if len(fields) > 0 {
				msg += " (" + strings.Join(fields, "; ") + ")"
			}
			return msg
		}
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return fmt.Sprintf("spaceship: http %d", status)
	}
	return fmt.Sprintf("spaceship: http %d: %s", status, text)
}

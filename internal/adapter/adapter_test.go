package adapter

import (
	"context"
	"fmt"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benithors/regbridge/internal/registrar"
)

var (
	ctx     = context.Background()
	example = DomainRef{SLD: "example", TLD: "com"}
)

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAdapter(c registrar.Client) *Adapter {
	return New(c, WithLogger(quietLogger()))
}

func upstreamErr(msg string) error {
	return &registrar.Error{Provider: "mock", StatusCode: 422, Message: msg}
}

func strPtr(s string) *string { return &s }
func boolPtr(v bool) *bool    { return &v }

func TestFetchNameservers_SlotCount(t *testing.T) {
	for n := 0; n <= 8; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			hosts := make([]string, n)
			for i := range hosts {
				hosts[i] = fmt.Sprintf("ns%d.example.net", i+1)
			}
			client := &mockRegistrarClient{}
			client.On("FetchDomain", ctx, "example.com").Return(registrar.Domain{Nameservers: hosts}, nil)

			res := newTestAdapter(client).FetchNameservers(ctx, example)

			if n == 0 {
				require.True(t, res.Failed())
				assert.Equal(t, map[string]any{"error": "No nameservers found for this domain"}, res.Map())
				return
			}
			require.False(t, res.Failed())
			want := min(n, MaxNameservers)
			got := res.Map()
			assert.Len(t, got, want)
			for k := 1; k <= want; k++ {
				assert.Equal(t, hosts[k-1], got[fmt.Sprintf("ns%d", k)])
			}
		})
	}
}

func TestFetchNameservers_AllBlank(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(registrar.Domain{Nameservers: []string{"", "  "}}, nil)

	res := newTestAdapter(client).FetchNameservers(ctx, example)

	require.True(t, res.Failed())
	assert.Equal(t, "Could not process nameserver information", res.Error())
}

func TestFetchNameservers_UpstreamFailure(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(nil, upstreamErr("Domain not found"))

	res := newTestAdapter(client).FetchNameservers(ctx, example)

	assert.Equal(t, map[string]any{"error": "Domain not found"}, res.Map())
}

func TestSaveNameservers_SkipsBlankSlots(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("UpdateNameservers", ctx, "example.com", registrar.NameserverParams{
		Provider: registrar.NameserverProviderCustom,
		Hosts:    []string{"a.com", "b.com"},
	}).Return(nil)

	res := newTestAdapter(client).SaveNameservers(ctx, example, [MaxNameservers]string{"a.com", "b.com", "", "", ""})

	assert.Equal(t, map[string]any{"success": true}, res.Map())
	client.AssertExpectations(t)
}

func TestSaveNameservers_UpstreamFailure(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("UpdateNameservers", ctx, "example.com", mock.Anything).Return(upstreamErr("invalid host"))

	res := newTestAdapter(client).SaveNameservers(ctx, example, [MaxNameservers]string{"bad"})

	assert.Equal(t, map[string]any{"error": "invalid host"}, res.Map())
}

func TestRegistrarLock_RoundTrip(t *testing.T) {
	a := newTestAdapter(&lockingClient{})

	require.False(t, a.SetRegistrarLock(ctx, example, true).Failed())
	assert.Equal(t, LockLocked, a.FetchRegistrarLock(ctx, example).State)

	require.False(t, a.SetRegistrarLock(ctx, example, false).Failed())
	assert.Equal(t, LockUnlocked, a.FetchRegistrarLock(ctx, example).State)
}

func TestFetchRegistrarLock_Failure(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(nil, upstreamErr("rate limited"))

	got := newTestAdapter(client).FetchRegistrarLock(ctx, example)

	assert.True(t, got.Failed())
	assert.Equal(t, "rate limited", got.Message)
	assert.Equal(t, map[string]any{"error": "rate limited"}, got.Result().Map())
}

func TestSetRegistrarLock_Failure(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("UpdateTransferLock", ctx, "example.com", registrar.TransferLockParams{Locked: true}).Return(upstreamErr("nope"))

	res := newTestAdapter(client).SetRegistrarLock(ctx, example, true)

	assert.Equal(t, "nope", res.Error())
}

func TestFetchContacts_RegistrantOnly(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(registrar.Domain{RegistrantID: "reg-1"}, nil)
	client.On("FetchContact", ctx, "reg-1").Return(registrar.Contact{
		FirstName: strPtr("Ada"),
		LastName:  strPtr("Lovelace"),
		Email:     strPtr("ada@example.com"),
		Phone:     strPtr("(555) 123-4567"),
	}, nil)

	res := newTestAdapter(client).FetchContacts(ctx, example)
	require.False(t, res.Failed())

	got := res.Map()
	registrant, ok := got[RoleRegistrant].(map[string]string)
	require.True(t, ok)
	assert.Len(t, registrant, len(ContactKeys))
	assert.Equal(t, "Ada", registrant[KeyFirstName])
	assert.Equal(t, "", registrant[KeyCompanyName])
	assert.Equal(t, "+5551234567", registrant[KeyPhone])
	assert.Equal(t, "", registrant[KeyFax])

	for _, role := range []string{RoleAdmin, RoleTechnical, RoleBilling} {
		assert.Equal(t, map[string]string{}, got[role], role)
	}
	client.AssertNumberOfCalls(t, "FetchContact", 1)
}

func TestFetchContacts_FailureDiscardsPartialData(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(registrar.Domain{
		RegistrantID: "reg-1",
		AdminID:      "adm-1",
		TechID:       "tech-1",
		BillingID:    "bill-1",
	}, nil)
	client.On("FetchContact", ctx, "reg-1").Return(registrar.Contact{FirstName: strPtr("Ada")}, nil)
	client.On("FetchContact", ctx, "adm-1").Return(registrar.Contact{FirstName: strPtr("Grace")}, nil)
	client.On("FetchContact", ctx, "tech-1").Return(nil, upstreamErr("contact lookup failed"))

	res := newTestAdapter(client).FetchContacts(ctx, example)

	assert.Equal(t, map[string]any{"error": "contact lookup failed"}, res.Map())
	client.AssertNotCalled(t, "FetchContact", ctx, "bill-1")
}

func TestFetchAuthCode(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchAuthCode", ctx, "example.com").Return(registrar.AuthCode{Code: strPtr("epp-123")}, nil)

	res := newTestAdapter(client).FetchAuthCode(ctx, example)

	assert.Equal(t, map[string]any{"success": true, "eppcode": "epp-123"}, res.Map())
}

func TestFetchAuthCode_AbsentCode(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchAuthCode", ctx, "example.com").Return(registrar.AuthCode{}, nil)

	res := newTestAdapter(client).FetchAuthCode(ctx, example)

	assert.Equal(t, map[string]any{"success": true, "eppcode": ""}, res.Map())
}

func TestSetPrivacyProtection(t *testing.T) {
	cases := []struct {
		enable bool
		level  registrar.PrivacyLevel
	}{
		{true, registrar.PrivacyLevelHigh},
		{false, registrar.PrivacyLevelPublic},
	}
	for _, tc := range cases {
		client := &mockRegistrarClient{}
		client.On("UpdatePrivacy", ctx, "example.com", registrar.PrivacyParams{Level: tc.level}).Return(nil)

		res := newTestAdapter(client).SetPrivacyProtection(ctx, example, tc.enable)

		assert.Equal(t, map[string]any{"success": true}, res.Map())
		client.AssertExpectations(t)
	}
}

func TestUpdateContacts_AssignsAllRoles(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("CreateContact", ctx, registrar.ContactParams{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Organization: "Engines Ltd",
		Email:        "ada@example.com",
		Address1:     "1 Analytical Way",
		City:         "London",
		CountryCode:  "GB",
		PostalCode:   "N1 9GU",
		Phone:        "+44.2079460000",
	}).Return("new-1", nil)
	client.On("UpdateContactRoles", ctx, "example.com", registrar.ContactRoles{
		Registrant: "new-1", Admin: "new-1", Tech: "new-1", Billing: "new-1",
	}).Return(nil)

	res := newTestAdapter(client).UpdateContacts(ctx, example, ContactDetails{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		CompanyName: "Engines Ltd",
		Email:       "ada@example.com",
		Address1:    "1 Analytical Way",
		City:        "London",
		CountryCode: "GB",
		Postcode:    "N1 9GU",
		Phone:       "+44.2079460000",
	})

	assert.Equal(t, map[string]any{"success": true}, res.Map())
	client.AssertExpectations(t)
}

func TestUpdateContacts_CreateFailureSkipsAssignment(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("CreateContact", ctx, mock.Anything).Return("", upstreamErr("email is invalid"))

	res := newTestAdapter(client).UpdateContacts(ctx, example, ContactDetails{})

	assert.Equal(t, "email is invalid", res.Error())
	client.AssertNotCalled(t, "UpdateContactRoles", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncStatus_Defaults(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(registrar.Domain{ExpirationDate: "2027-03-01T10:00:00.000Z"}, nil)

	res := newTestAdapter(client).SyncStatus(ctx, example)

	assert.Equal(t, map[string]any{
		"expirydate":      "2027-03-01",
		"active":          true,
		"expired":         false,
		"transferredAway": false,
	}, res.Map())
}

func TestSyncStatus_ExplicitFlags(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(registrar.Domain{
		ExpirationDate: "2024-01-15",
		Active:         boolPtr(false),
		Expired:        boolPtr(true),
	}, nil)

	res := newTestAdapter(client).SyncStatus(ctx, example)

	assert.Equal(t, map[string]any{
		"expirydate":      "2024-01-15",
		"active":          false,
		"expired":         true,
		"transferredAway": false,
	}, res.Map())
}

func TestSyncStatus_Failure(t *testing.T) {
	client := &mockRegistrarClient{}
	client.On("FetchDomain", ctx, "example.com").Return(nil, fmt.Errorf("dial tcp: connection refused"))

	res := newTestAdapter(client).SyncStatus(ctx, example)

	assert.Equal(t, map[string]any{"error": "dial tcp: connection refused"}, res.Map())
}

func TestDomainRef_FQDN(t *testing.T) {
	assert.Equal(t, "example.co.uk", DomainRef{SLD: "Example", TLD: "co.uk"}.FQDN())
	assert.Equal(t, "victim.com?.net", DomainRef{SLD: "victim.com?", TLD: "net"}.FQDN())
}

package host

import (
	"context"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benithors/regbridge/internal/adapter"
	"github.com/benithors/regbridge/internal/metrics"
	"github.com/benithors/regbridge/internal/registrar"
	"github.com/benithors/regbridge/internal/registrar/registrartest"
)

func newTestDispatcher(t *testing.T, fake *registrartest.Fake) (*Dispatcher, *metrics.Metrics) {
	t.Helper()

	l := log.New()
	l.SetOutput(io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	return NewDispatcher(Options{
		Factory:  fake.Factory(),
		Defaults: registrar.Credentials{APIKey: "default-key", APISecret: "default-secret"},
		Logger:   l,
		Metrics:  m,
	}), m
}

func seeded() *registrartest.Fake {
	f := registrartest.New()
	f.Domains["example.com"] = &registrar.Domain{
		Name:           "example.com",
		Nameservers:    []string{"ns1.example.net", "ns2.example.net"},
		ExpirationDate: "2027-03-01T10:00:00Z",
	}
	return f
}

func domainParams(extra Params) Params {
	return Params{"sld": "example", "tld": "com"}.Merge(extra)
}

func TestCall_GetNameservers(t *testing.T) {
	d, m := newTestDispatcher(t, seeded())

	got := d.Call(context.Background(), OpGetNameservers, domainParams(nil))

	assert.Equal(t, map[string]any{"ns1": "ns1.example.net", "ns2": "ns2.example.net"}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("GetNameservers", "success")))
}

func TestCall_SaveNameservers(t *testing.T) {
	fake := seeded()
	d, _ := newTestDispatcher(t, fake)

	got := d.Call(context.Background(), OpSaveNameservers, domainParams(Params{
		"ns1": "a.com", "ns2": "b.com", "ns3": "", "ns4": "", "ns5": "",
	}))

	assert.Equal(t, map[string]any{"success": true}, got)
	assert.Equal(t, []string{"a.com", "b.com"}, fake.Domains["example.com"].Nameservers)
}

func TestCall_RegistrarLockRoundTrip(t *testing.T) {
	d, _ := newTestDispatcher(t, seeded())
	ctx := context.Background()

	assert.Equal(t, map[string]any{"success": true}, d.Call(ctx, OpSaveRegistrarLock, domainParams(Params{"lockenabled": "locked"})))
	assert.Equal(t, "locked", d.Call(ctx, OpGetRegistrarLock, domainParams(nil)))

	assert.Equal(t, map[string]any{"success": true}, d.Call(ctx, OpSaveRegistrarLock, domainParams(Params{"lockenabled": "unlocked"})))
	assert.Equal(t, "unlocked", d.Call(ctx, OpGetRegistrarLock, domainParams(nil)))

	d.Call(ctx, OpSaveRegistrarLock, domainParams(Params{"lockenabled": "locked"}))
	d.Call(ctx, OpSaveRegistrarLock, domainParams(nil))
	assert.Equal(t, "unlocked", d.Call(ctx, OpGetRegistrarLock, domainParams(nil)))
}

func TestCall_GetRegistrarLock_FailureIsMap(t *testing.T) {
	fake := seeded()
	fake.Fail["FetchDomain"] = "rate limited"
	d, _ := newTestDispatcher(t, fake)

	got := d.Call(context.Background(), OpGetRegistrarLock, domainParams(nil))

	assert.Equal(t, map[string]any{"error": "rate limited"}, got)
}

func TestCall_SaveThenGetContactDetails(t *testing.T) {
	fake := seeded()
	d, _ := newTestDispatcher(t, fake)
	ctx := context.Background()

	got := d.Call(ctx, OpSaveContactDetails, domainParams(Params{
		"firstname":            "Ada",
		"lastname":             "Lovelace",
		"email":                "ada@example.com",
		"address1":             "1 Analytical Way",
		"city":                 "London",
		"state":                "London",
		"countrycode":          "GB",
		"postcode":             "N1 9GU",
		"phonenumberformatted": "+44.2079460000",
	}))
	require.Equal(t, map[string]any{"success": true}, got)

	contacts, ok := d.Call(ctx, OpGetContactDetails, domainParams(nil)).(map[string]any)
	require.True(t, ok)
	for _, role := range []string{adapter.RoleRegistrant, adapter.RoleAdmin, adapter.RoleTechnical, adapter.RoleBilling} {
		c, ok := contacts[role].(map[string]string)
		require.True(t, ok, role)
		assert.Equal(t, "Ada", c[adapter.KeyFirstName], role)
		assert.Equal(t, "", c[adapter.KeyCompanyName], role)
		assert.Equal(t, "+442079460000", c[adapter.KeyPhone], role)
	}
}

func TestCall_IDProtectToggle(t *testing.T) {
	fake := seeded()
	d, _ := newTestDispatcher(t, fake)
	ctx := context.Background()

	assert.Equal(t, map[string]any{"success": true}, d.Call(ctx, OpIDProtectToggle, domainParams(Params{"protectenable": true})))
	assert.Equal(t, registrar.PrivacyLevelHigh, fake.Privacy["example.com"])

	d.Call(ctx, OpIDProtectToggle, domainParams(Params{"protectenable": "0"}))
	assert.Equal(t, registrar.PrivacyLevelPublic, fake.Privacy["example.com"])
}

func TestCall_GetEPPCode(t *testing.T) {
	fake := seeded()
	fake.Auth["example.com"] = "epp-123"
	d, _ := newTestDispatcher(t, fake)

	got := d.Call(context.Background(), OpGetEPPCode, domainParams(nil))

	assert.Equal(t, map[string]any{"success": true, "eppcode": "epp-123"}, got)
}

func TestCall_Sync(t *testing.T) {
	d, _ := newTestDispatcher(t, seeded())

	got := d.Call(context.Background(), OpSync, domainParams(nil))

	assert.Equal(t, map[string]any{
		"expirydate":      "2027-03-01",
		"active":          true,
		"expired":         false,
		"transferredAway": false,
	}, got)
}

func TestCall_UnknownDomain(t *testing.T) {
	d, m := newTestDispatcher(t, seeded())

	got := d.Call(context.Background(), OpSync, Params{"sld": "missing", "tld": "com"})

	assert.Equal(t, map[string]any{"error": "Domain missing.com not found"}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("Sync", "error")))
}

func TestCall_MissingParamsReachUpstream(t *testing.T) {
	fake := seeded()
	d, _ := newTestDispatcher(t, fake)

	got := d.Call(context.Background(), OpGetNameservers, Params{})

	assert.Equal(t, map[string]any{"error": "Domain . not found"}, got)
	assert.Equal(t, []string{"FetchDomain"}, fake.Calls)
}

func TestCall_StubbedOperationsSkipUpstream(t *testing.T) {
	fake := seeded()
	d, _ := newTestDispatcher(t, fake)

	for _, op := range []Operation{OpRegisterDomain, OpTransferDomain, OpRenewDomain} {
		assert.Equal(t, map[string]any{"success": true}, d.Call(context.Background(), op, domainParams(nil)), op)
	}
	assert.Empty(t, fake.Calls)
}

func TestCall_UnsupportedOperation(t *testing.T) {
	d, m := newTestDispatcher(t, seeded())

	got := d.Call(context.Background(), Operation("DeleteEverything"), domainParams(nil))

	assert.Equal(t, map[string]any{"error": "unsupported operation DeleteEverything"}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("unknown", "error")))
}

func TestCall_CredentialsFromParamsOverrideDefaults(t *testing.T) {
	var seen registrar.Credentials
	fake := seeded()
	d := NewDispatcher(Options{
		Factory: func(c registrar.Credentials) (registrar.Client, error) {
			seen = c
			return fake, nil
		},
		Defaults: registrar.Credentials{APIKey: "default-key", APISecret: "default-secret"},
	})

	d.Call(context.Background(), OpSync, domainParams(Params{"ApiKey": "host-key"}))

	assert.Equal(t, registrar.Credentials{APIKey: "host-key", APISecret: "default-secret"}, seen)
}

func TestCall_FactoryErrorBecomesErrorResult(t *testing.T) {
	fake := seeded()
	d := NewDispatcher(Options{Factory: fake.Factory()})

	got := d.Call(context.Background(), OpSync, domainParams(nil))

	assert.Equal(t, map[string]any{"error": "missing api key"}, got)
}

func TestCall_NoFactory(t *testing.T) {
	d := NewDispatcher(Options{})

	got := d.Call(context.Background(), OpSync, domainParams(nil))

	assert.Equal(t, map[string]any{"error": "registrar client is not configured"}, got)
}

func TestMetaAndConfigArray(t *testing.T) {
	assert.Equal(t, "Spaceship", MetaData()["DisplayName"])

	cfg := ConfigArray()
	require.Contains(t, cfg, "ApiKey")
	require.Contains(t, cfg, "ApiSecret")
	assert.Equal(t, "password", cfg["ApiSecret"].Type)
	assert.Equal(t, "System", cfg["FriendlyName"].Type)
}

// Package host is the edge between the hosting/billing application and the
// registrar adapter: it reads the host's parameter maps, picks the adapter
// operation and renders results in the literal shapes the host expects.
package host

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/benithors/regbridge/internal/adapter"
	"github.com/benithors/regbridge/internal/metrics"
	"github.com/benithors/regbridge/internal/registrar"
)

type Operation string

const (
	OpRegisterDomain     Operation = "RegisterDomain"
	OpTransferDomain     Operation = "TransferDomain"
	OpRenewDomain        Operation = "RenewDomain"
	OpGetNameservers     Operation = "GetNameservers"
	OpSaveNameservers    Operation = "SaveNameservers"
	OpGetRegistrarLock   Operation = "GetRegistrarLock"
	OpSaveRegistrarLock  Operation = "SaveRegistrarLock"
	OpGetEPPCode         Operation = "GetEPPCode"
	OpGetContactDetails  Operation = "GetContactDetails"
	OpSaveContactDetails Operation = "SaveContactDetails"
	OpIDProtectToggle    Operation = "IDProtectToggle"
	OpSync               Operation = "Sync"
)

// Operations lists every operation the dispatcher accepts.
func Operations() []Operation {
	return []Operation{
		OpRegisterDomain, OpTransferDomain, OpRenewDomain,
		OpGetNameservers, OpSaveNameservers,
		OpGetRegistrarLock, OpSaveRegistrarLock,
		OpGetEPPCode,
		OpGetContactDetails, OpSaveContactDetails,
		OpIDProtectToggle,
		OpSync,
	}
}

func (o Operation) Known() bool {
	for _, k := range Operations() {
		if k == o {
			return true
		}
	}
	return false
}

// stubbed operations report success without contacting the registrar.
func (o Operation) stubbed() bool {
	return o == OpRegisterDomain || o == OpTransferDomain || o == OpRenewDomain
}

type Options struct {
	// Factory builds the registrar client for each call. Required.
	Factory registrar.Factory
	// Defaults are used when a call carries no ApiKey/ApiSecret.
	Defaults registrar.Credentials
	Logger   log.FieldLogger
	Metrics  *metrics.Metrics
}

type Dispatcher struct {
	opts Options
}

func NewDispatcher(opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return &Dispatcher{opts: opts}
}

// Call runs one host operation. The returned value is what the host expects
// for op: a map for every operation, except a bare "locked"/"unlocked" string
// for a successful GetRegistrarLock. Call never panics on bad input and never
// returns a Go error.
func (d *Dispatcher) Call(ctx context.Context, op Operation, p Params) any {
	start := time.Now()
	logger := d.opts.Logger.WithFields(log.Fields{
		"invocation": uuid.NewString(),
		"operation":  string(op),
	})

	out, failed := d.dispatch(ctx, op, p, logger)

	label := string(op)
	if !op.Known() {
		label = "unknown"
	}
	d.opts.Metrics.ObserveOperation(label, failed, start)
	logger.WithFields(log.Fields{
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Debug("operation finished")
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, op Operation, p Params, logger log.FieldLogger) (any, bool) {
	if !op.Known() {
		return adapter.Fail("unsupported operation " + string(op)).Map(), true
	}
	if op.stubbed() {
		logger.Warn("operation is not forwarded to the registrar; reporting success")
		return map[string]any{"success": true}, false
	}

	if d.opts.Factory == nil {
		return adapter.Fail("registrar client is not configured").Map(), true
	}
	client, err := d.opts.Factory(d.credentials(p))
	if err != nil {
		return adapter.Fail(registrar.Message(err)).Map(), true
	}

	a := adapter.New(client, adapter.WithLogger(logger))
	ref := adapter.DomainRef{SLD: p.String("sld"), TLD: p.String("tld")}

	var res adapter.Result
	switch op {
	case OpGetNameservers:
		res = a.FetchNameservers(ctx, ref)
	case OpSaveNameservers:
		var slots [adapter.MaxNameservers]string
		for i := range slots {
			slots[i] = p.String(nsParam(i + 1))
		}
		res = a.SaveNameservers(ctx, ref, slots)
	case OpGetRegistrarLock:
		lr := a.FetchRegistrarLock(ctx, ref)
		if lr.Failed() {
			return lr.Result().Map(), true
		}
		return lr.State.String(), false
	case OpSaveRegistrarLock:
		res = a.SetRegistrarLock(ctx, ref, p.String("lockenabled") == "locked")
	case OpGetEPPCode:
		res = a.FetchAuthCode(ctx, ref)
	case OpGetContactDetails:
		res = a.FetchContacts(ctx, ref)
	case OpSaveContactDetails:
		res = a.UpdateContacts(ctx, ref, contactDetails(p))
	case OpIDProtectToggle:
		res = a.SetPrivacyProtection(ctx, ref, p.Bool("protectenable"))
	case OpSync:
		res = a.SyncStatus(ctx, ref)
	}
	return res.Map(), res.Failed()
}

func (d *Dispatcher) credentials(p Params) registrar.Credentials {
	creds := d.opts.Defaults
	if k := p.String("ApiKey"); k != "" {
		creds.APIKey = k
	}
	if s := p.String("ApiSecret"); s != "" {
		creds.APISecret = s
	}
	return creds
}

func contactDetails(p Params) adapter.ContactDetails {
	return adapter.ContactDetails{
		FirstName:   p.String("firstname"),
		LastName:    p.String("lastname"),
		CompanyName: p.String("companyname"),
		Email:       p.String("email"),
		Address1:    p.String("address1"),
		Address2:    p.String("address2"),
		City:        p.String("city"),
		State:       p.String("state"),
		CountryCode: p.String("countrycode"),
		Postcode:    p.String("postcode"),
		Phone:       p.String("phonenumberformatted"),
	}
}

func nsParam(slot int) string {
	return "ns" + strconv.Itoa(slot)
}

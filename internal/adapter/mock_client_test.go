package adapter

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/benithors/regbridge/internal/registrar"
)

type mockRegistrarClient struct {
	mock.Mock
}

func (_m *mockRegistrarClient) Name() string { return "mock" }

func (_m *mockRegistrarClient) FetchDomain(ctx context.Context, fqdn string) (registrar.Domain, error) {
	args := _m.Called(ctx, fqdn)
	var r0 registrar.Domain
	if args.Get(0) != nil {
		r0 = args.Get(0).(registrar.Domain)
	}
	return r0, args.Error(1)
}

func (_m *mockRegistrarClient) FetchContact(ctx context.Context, id string) (registrar.Contact, error) {
	args := _m.Called(ctx, id)
	var r0 registrar.Contact
	if args.Get(0) != nil {
		r0 = args.Get(0).(registrar.Contact)
	}
	return r0, args.Error(1)
}

func (_m *mockRegistrarClient) UpdateNameservers(ctx context.Context, fqdn string, p registrar.NameserverParams) error {
	return _m.Called(ctx, fqdn, p).Error(0)
}

func (_m *mockRegistrarClient) UpdateTransferLock(ctx context.Context, fqdn string, p registrar.TransferLockParams) error {
	return _m.Called(ctx, fqdn, p).Error(0)
}

func (_m *mockRegistrarClient) UpdatePrivacy(ctx context.Context, fqdn string, p registrar.PrivacyParams) error {
	return _m.Called(ctx, fqdn, p).Error(0)
}

func (_m *mockRegistrarClient) CreateContact(ctx context.Context, p registrar.ContactParams) (string, error) {
	args := _m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (_m *mockRegistrarClient) UpdateContactRoles(ctx context.Context, fqdn string, p registrar.ContactRoles) error {
	return _m.Called(ctx, fqdn, p).Error(0)
}

func (_m *mockRegistrarClient) FetchAuthCode(ctx context.Context, fqdn string) (registrar.AuthCode, error) {
	args := _m.Called(ctx, fqdn)
	var r0 registrar.AuthCode
	if args.Get(0) != nil {
		r0 = args.Get(0).(registrar.AuthCode)
	}
	return r0, args.Error(1)
}

// lockingClient keeps transfer-lock state between calls.
type lockingClient struct {
	mockRegistrarClient
	locked bool
}

func (c *lockingClient) FetchDomain(_ context.Context, fqdn string) (registrar.Domain, error) {
	return registrar.Domain{Name: fqdn, TransferLocked: c.locked}, nil
}

func (c *lockingClient) UpdateTransferLock(_ context.Context, _ string, p registrar.TransferLockParams) error {
	c.locked = p.Locked
	return nil
}

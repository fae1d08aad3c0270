package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rentloop/crm-sync-worker/internal/crm"
	"github.com/rentloop/crm-sync-worker/internal/models"
)

type mockContactAPI struct {
	lookupByEmailFunc func(ctx context.Context, email string) (*crm.Contact, error)
	lookupByPhoneFunc func(ctx context.Context, phone string) (*crm.Contact, error)
	queryFunc         func(ctx context.Context, query string) ([]crm.Contact, error)

	calls []string
}

func (m *mockContactAPI) LookupContactByEmail(ctx context.Context, email string) (*crm.Contact, error) {
	m.calls = append(m.calls, "email")
	if m.lookupByEmailFunc != nil {
		return m.lookupByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockContactAPI) LookupContactByPhone(ctx context.Context, phone string) (*crm.Contact, error) {
	m.calls = append(m.calls, "phone")
	if m.lookupByPhoneFunc != nil {
		return m.lookupByPhoneFunc(ctx, phone)
	}
	return nil, nil
}

func (m *mockContactAPI) QueryContacts(ctx context.Context, query string) ([]crm.Contact, error) {
	m.calls = append(m.calls, "query:"+query)
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query)
	}
	return nil, nil
}

func TestResolve_EmailMatchShortCircuits(t *testing.T) {
	api := &mockContactAPI{
		lookupByEmailFunc: func(ctx context.Context, email string) (*crm.Contact, error) {
			return &crm.Contact{ID: "c-1", Email: email}, nil
		},
	}
	resolver := NewContactResolver(api)

	tenant := &models.Tenant{ID: 42, Email: "a@b.com", ConfirmationCode: "ABC123"}
	contact := resolver.Resolve(context.Background(), tenant, "+12036718335")

	if contact == nil || contact.ID != "c-1" {
		t.Fatalf("expected contact c-1, got %v", contact)
	}
	if len(api.calls) != 1 || api.calls[0] != "email" {
		t.Errorf("expected only email lookup, got %v", api.calls)
	}
}

func TestResolve_EmailFailureFallsThroughToPhone(t *testing.T) {
	api := &mockContactAPI{
		lookupByEmailFunc: func(ctx context.Context, email string) (*crm.Contact, error) {
			return nil, errors.New("simulated 500")
		},
		lookupByPhoneFunc: func(ctx context.Context, phone string) (*crm.Contact, error) {
			return &crm.Contact{ID: "c-2"}, nil
		},
	}
	resolver := NewContactResolver(api)

	tenant := &models.Tenant{ID: 42, Email: "a@b.com"}
	contact := resolver.Resolve(context.Background(), tenant, "+12036718335")

	if contact == nil || contact.ID != "c-2" {
		t.Fatalf("expected phone lookup result, got %v", contact)
	}
	if len(api.calls) < 2 || api.calls[0] != "email" || api.calls[1] != "phone" {
		t.Errorf("expected email then phone, got %v", api.calls)
	}
}

func TestResolve_SkipsEmptyEmailAndPhone(t *testing.T) {
	api := &mockContactAPI{}
	resolver := NewContactResolver(api)

	tenant := &models.Tenant{ID: 42, ConfirmationCode: "ABC123"}
	contact := resolver.Resolve(context.Background(), tenant, "")

	if contact != nil {
		t.Fatalf("expected no match, got %v", contact)
	}
	expected := []string{"query:ABC123", "query:42"}
	if len(api.calls) != len(expected) {
		t.Fatalf("expected calls %v, got %v", expected, api.calls)
	}
	for i := range expected {
		if api.calls[i] != expected[i] {
			t.Errorf("expected calls %v, got %v", expected, api.calls)
		}
	}
}

func TestResolve_TenantIDQueryIsLastResort(t *testing.T) {
	api := &mockContactAPI{
		queryFunc: func(ctx context.Context, query string) ([]crm.Contact, error) {
			if query == "42" {
				return []crm.Contact{{ID: "c-3"}}, nil
			}
			return nil, nil
		},
	}
	resolver := NewContactResolver(api)

	tenant := &models.Tenant{ID: 42, Email: "a@b.com", ConfirmationCode: "ABC123"}
	contact := resolver.Resolve(context.Background(), tenant, "+12036718335")

	if contact == nil || contact.ID != "c-3" {
		t.Fatalf("expected tenant-id query result, got %v", contact)
	}
	expected := []string{"email", "phone", "query:ABC123", "query:42"}
	if len(api.calls) != len(expected) {
		t.Fatalf("expected calls %v, got %v", expected, api.calls)
	}
	for i := range expected {
		if api.calls[i] != expected[i] {
			t.Errorf("expected calls %v, got %v", expected, api.calls)
		}
	}
}

func TestResolve_AllExhaustedReturnsNil(t *testing.T) {
	api := &mockContactAPI{
		lookupByEmailFunc: func(ctx context.Context, email string) (*crm.Contact, error) {
			return nil, errors.New("simulated 500")
		},
		queryFunc: func(ctx context.Context, query string) ([]crm.Contact, error) {
			return nil, errors.New("simulated timeout")
		},
	}
	resolver := NewContactResolver(api)

	tenant := &models.Tenant{ID: 42, Email: "a@b.com"}
	if contact := resolver.Resolve(context.Background(), tenant, "+12036718335"); contact != nil {
		t.Errorf("expected nil after exhausting cascade, got %v", contact)
	}
}

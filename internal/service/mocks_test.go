package service

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/google"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
)

// Mock connection repository
type mockConnectionRepo struct {
	mock.Mock
}

func (m *mockConnectionRepo) FindByID(ctx context.Context, id string) (*model.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *mockConnectionRepo) FindActive(ctx context.Context, userID string, integration model.Integration, googleEmail string) (*model.Connection, error) {
	args := m.Called(ctx, userID, integration, googleEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *mockConnectionRepo) FindActiveByUserAndIntegration(ctx context.Context, userID string, integration model.Integration) (*model.Connection, error) {
	args := m.Called(ctx, userID, integration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *mockConnectionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Connection), args.Error(1)
}

func (m *mockConnectionRepo) ListUserIDsWithActive(ctx context.Context, integration model.Integration) ([]string, error) {
	args := m.Called(ctx, integration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockConnectionRepo) Create(ctx context.Context, params model.CreateConnectionParams) (*model.Connection, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *mockConnectionRepo) UpdateTokens(ctx context.Context, id string, params model.UpdateConnectionTokensParams) (*model.Connection, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *mockConnectionRepo) MarkRevoked(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock contact repository
type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *mockContactRepo) FindByEmail(ctx context.Context, userID, email string) (*model.Contact, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *mockContactRepo) FindByPhone(ctx context.Context, userID, phone string) (*model.Contact, error) {
	args := m.Called(ctx, userID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *mockContactRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Contact, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contact), args.Error(1)
}

func (m *mockContactRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockContactRepo) Create(ctx context.Context, params model.CreateContactParams) (*model.Contact, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

// Mock appointment repository
type mockAppointmentRepo struct {
	mock.Mock
}

func (m *mockAppointmentRepo) FindByExternalEventID(ctx context.Context, userID, externalEventID string) (*model.Appointment, error) {
	args := m.Called(ctx, userID, externalEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Appointment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAppointmentRepo) Upsert(ctx context.Context, params model.UpsertAppointmentParams) (*model.Appointment, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

// newTestGoogleClient points every provider endpoint at the given test server.
func newTestGoogleClient(t *testing.T, server *httptest.Server) *google.Client {
	t.Helper()
	base := server.URL
	return google.NewClientWithEndpoints("client-id", "client-secret", base+"/callback", google.Endpoints{
		Auth:              base + "/auth",
		Token:             base + "/token",
		Userinfo:          base + "/userinfo",
		Revoke:            base + "/revoke",
		CalendarEvents:    base + "/calendar/events",
		BusinessAccounts:  base + "/accounts",
		BusinessLocations: base + "/%s/locations",
	})
}

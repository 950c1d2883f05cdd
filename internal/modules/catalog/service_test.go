package catalog

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
)

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	args := m.Called(ctx, s)
	if s != nil {
		s.ID = 11
	}
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) ListByCompany(ctx context.Context, companyID int64, includeInactive bool) ([]domain.Service, error) {
	args := m.Called(ctx, companyID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *MockServiceRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type MockCompanyReader struct {
	mock.Mock
}

func (m *MockCompanyReader) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func newTestService() (*Service, *MockServiceRepository, *MockCompanyReader) {
	services := new(MockServiceRepository)
	companies := new(MockCompanyReader)
	return NewService(services, companies, zerolog.Nop()), services, companies
}

func TestService_CreateService_Success(t *testing.T) {
	svc, services, _ := newTestService()
	services.On("Create", mock.Anything, mock.AnythingOfType("*domain.Service")).Return(nil)

	out, err := svc.CreateService(context.Background(), 3, CreateServiceRequest{Name: " Haircut ", DurationMinutes: 30, Price: 15})

	require.NoError(t, err)
	assert.Equal(t, int64(11), out.ID)
	assert.Equal(t, "Haircut", out.Name)
	assert.Equal(t, int64(3), out.CompanyID)
	assert.True(t, out.IsActive)
}

func TestService_CreateService_Validation(t *testing.T) {
	svc, services, _ := newTestService()

	_, err := svc.CreateService(context.Background(), 3, CreateServiceRequest{Name: "Haircut", DurationMinutes: 0, Price: -1})

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	services.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_GetService_OtherCompanyIsNotFound(t *testing.T) {
	svc, services, _ := newTestService()
	services.On("GetByID", mock.Anything, int64(11)).Return(&domain.Service{ID: 11, CompanyID: 4}, nil)

	_, err := svc.GetService(context.Background(), 3, 11)

	assert.Equal(t, "Service not found", apperr.Message(err))
}

func TestService_UpdateService_OnlyChangedFields(t *testing.T) {
	svc, services, _ := newTestService()
	services.On("GetByID", mock.Anything, int64(11)).
		Return(&domain.Service{ID: 11, CompanyID: 3, Name: "Haircut", DurationMinutes: 30, IsActive: true}, nil)
	services.On("UpdateFields", mock.Anything, int64(11), map[string]any{"duration_minutes": 45}).Return(nil)

	duration := 45
	out, err := svc.UpdateService(context.Background(), 3, 11, UpdateServiceRequest{DurationMinutes: &duration})

	require.NoError(t, err)
	assert.Equal(t, 45, out.DurationMinutes)
	services.AssertExpectations(t)
}

func TestService_DeleteService_IsSoft(t *testing.T) {
	svc, services, _ := newTestService()
	services.On("GetByID", mock.Anything, int64(11)).Return(&domain.Service{ID: 11, CompanyID: 3, IsActive: true}, nil)
	services.On("UpdateFields", mock.Anything, int64(11), map[string]any{"is_active": false}).Return(nil)

	require.NoError(t, svc.DeleteService(context.Background(), 3, 11))
	services.AssertExpectations(t)
}

func TestService_ListServices_UnknownCompany(t *testing.T) {
	svc, services, companies := newTestService()
	companies.On("GetByID", mock.Anything, int64(3)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ListServices(context.Background(), 3, false)

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	services.AssertNotCalled(t, "ListByCompany", mock.Anything, mock.Anything, mock.Anything)
}

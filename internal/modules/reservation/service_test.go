package reservation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
	"queueless/internal/repository"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	if r != nil {
		r.ID = 501
	}
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockReservationRepository) HasConflict(ctx context.Context, companyID int64, workerID *int64, start, end time.Time, excludeID int64) (bool, error) {
	args := m.Called(ctx, companyID, workerID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) ListActiveBetween(ctx context.Context, companyID int64, workerID *int64, from, to time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, companyID, workerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) List(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *MockReservationRepository) ListForExport(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetSettings(ctx context.Context, companyID int64) (*domain.CompanySettings, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanySettings), args.Error(1)
}

func (m *MockCompanyRepository) GetWorkingHours(ctx context.Context, companyID int64, weekday int) (*domain.WorkingHours, error) {
	args := m.Called(ctx, companyID, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkingHours), args.Error(1)
}

func (m *MockCompanyRepository) ListWorkBreaksForDay(ctx context.Context, companyID int64, weekday int) ([]domain.WorkBreak, error) {
	args := m.Called(ctx, companyID, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkBreak), args.Error(1)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Get(ctx context.Context, companyID, userID int64) (*domain.CompanyMembership, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyMembership), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) Get(ctx context.Context, companyID int64, date string, workerID *int64) ([]byte, error) {
	args := m.Called(ctx, companyID, date, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAvailabilityCache) Set(ctx context.Context, companyID int64, date string, workerID *int64, payload []byte) error {
	args := m.Called(ctx, companyID, date, workerID, payload)
	return args.Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, companyID int64) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

type mocks struct {
	reservations *MockReservationRepository
	companies    *MockCompanyRepository
	members      *MockMembershipRepository
	services     *MockServiceRepository
	cache        *MockAvailabilityCache
}

// Monday 2030-03-04 is the reservation day; "now" is the Friday before.
var testNow = time.Date(2030, 3, 1, 8, 0, 0, 0, time.UTC)

func mondayAt(hhmm string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2030-03-04 "+hhmm)
	return t.UTC()
}

func newTestService() (*Service, *mocks) {
	m := &mocks{
		reservations: new(MockReservationRepository),
		companies:    new(MockCompanyRepository),
		members:      new(MockMembershipRepository),
		services:     new(MockServiceRepository),
		cache:        new(MockAvailabilityCache),
	}
	svc := NewService(Deps{
		Reservations: m.reservations,
		Companies:    m.companies,
		Members:      m.members,
		Services:     m.services,
		Cache:        m.cache,
		Logger:       zerolog.Nop(),
	})
	svc.now = func() time.Time { return testNow }
	return svc, m
}

func (m *mocks) openCompany(settings *domain.CompanySettings) {
	m.companies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1, Name: "Barber", IsActive: true}, nil)
	m.companies.On("GetSettings", mock.Anything, int64(1)).Return(settings, nil)
	m.companies.On("GetWorkingHours", mock.Anything, int64(1), 1).
		Return(&domain.WorkingHours{CompanyID: 1, Weekday: 1, OpenTime: "09:00", CloseTime: "18:00"}, nil)
}

func defaultSettings() *domain.CompanySettings {
	return &domain.CompanySettings{CompanyID: 1, SlotMinutes: 30, TraineeExtraMinutes: 15, MaxAdvanceDays: 60}
}

func TestService_Create_Success(t *testing.T) {
	svc, m := newTestService()
	m.openCompany(defaultSettings())
	m.reservations.On("HasConflict", mock.Anything, int64(1), (*int64)(nil), mondayAt("10:00"), mondayAt("10:30"), int64(0)).Return(false, nil)
	m.reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil)
	m.cache.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	r, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("10:00")})

	require.NoError(t, err)
	assert.Equal(t, int64(501), r.ID)
	assert.Equal(t, domain.ReservationPending, r.Status)
	assert.Equal(t, mondayAt("10:30"), r.SlotEnd)
	assert.Equal(t, int64(7), r.UserID)
	m.reservations.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestService_Create_AutoAcceptConfirms(t *testing.T) {
	svc, m := newTestService()
	settings := defaultSettings()
	settings.AutoAcceptReservations = true
	m.openCompany(settings)
	m.reservations.On("HasConflict", mock.Anything, int64(1), mock.Anything, mock.Anything, mock.Anything, int64(0)).Return(false, nil)
	m.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.cache.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	r, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("10:00")})

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, r.Status)
}

func TestService_Create_Conflict(t *testing.T) {
	svc, m := newTestService()
	m.openCompany(defaultSettings())
	m.reservations.On("HasConflict", mock.Anything, int64(1), mock.Anything, mock.Anything, mock.Anything, int64(0)).Return(true, nil)

	_, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("10:00")})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, "Time slot is not available", apperr.Message(err))
	m.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_ServiceDurationAndTraineeExtra(t *testing.T) {
	svc, m := newTestService()
	m.openCompany(defaultSettings())
	workerID, serviceID := int64(3), int64(9)
	m.services.On("GetByID", mock.Anything, serviceID).
		Return(&domain.Service{ID: serviceID, CompanyID: 1, DurationMinutes: 45, IsActive: true}, nil)
	m.members.On("Get", mock.Anything, int64(1), workerID).
		Return(&domain.CompanyMembership{CompanyID: 1, UserID: workerID, Role: domain.MemberRoleWorker, IsTrainee: true, IsActive: true}, nil)
	m.reservations.On("HasConflict", mock.Anything, int64(1), &workerID, mondayAt("10:00"), mondayAt("11:00"), int64(0)).Return(false, nil)
	m.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.cache.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	r, err := svc.Create(context.Background(), 7, CreateReservationRequest{
		CompanyID: 1,
		ServiceID: &serviceID,
		WorkerID:  &workerID,
		SlotStart: mondayAt("10:00"),
	})

	require.NoError(t, err)
	assert.Equal(t, mondayAt("11:00"), r.SlotEnd, "45 min service plus 15 min trainee extra")
}

func TestService_Create_InactiveWorker(t *testing.T) {
	svc, m := newTestService()
	m.openCompany(defaultSettings())
	workerID := int64(3)
	m.members.On("Get", mock.Anything, int64(1), workerID).
		Return(&domain.CompanyMembership{CompanyID: 1, UserID: workerID, IsActive: false}, nil)

	_, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, WorkerID: &workerID, SlotStart: mondayAt("10:00")})

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestService_Create_Rejections(t *testing.T) {
	end := mondayAt("09:30")
	tests := []struct {
		name string
		req  CreateReservationRequest
		want error
	}{
		{"in the past", CreateReservationRequest{CompanyID: 1, SlotStart: testNow.Add(-time.Hour)}, ErrInPast},
		{"end before start", CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("10:00"), SlotEnd: &end}, ErrInvalidRange},
		{"before opening", CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("08:30")}, ErrOutsideWorkingHours},
		{"past closing", CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("17:45")}, ErrOutsideWorkingHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()
			m.openCompany(defaultSettings())

			_, err := svc.Create(context.Background(), 7, tt.req)

			assert.ErrorIs(t, err, tt.want)
			m.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_ClosedDay(t *testing.T) {
	svc, m := newTestService()
	m.companies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1, IsActive: true}, nil)
	m.companies.On("GetSettings", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)
	m.companies.On("GetWorkingHours", mock.Anything, int64(1), 0).Return(nil, nil)

	sunday := time.Date(2030, 3, 3, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, SlotStart: sunday})

	assert.ErrorIs(t, err, ErrClosedDay)
}

func TestService_Create_TooFarAhead(t *testing.T) {
	svc, m := newTestService()
	settings := defaultSettings()
	settings.MaxAdvanceDays = 1
	m.openCompany(settings)

	_, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("10:00")})

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestService_Create_InactiveCompany(t *testing.T) {
	svc, m := newTestService()
	m.companies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1, IsActive: false}, nil)

	_, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("10:00")})

	assert.ErrorIs(t, err, ErrCompanyInactive)
}

func TestService_Create_CompanyNotFound(t *testing.T) {
	svc, m := newTestService()
	m.companies.On("GetByID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), 7, CreateReservationRequest{CompanyID: 1, SlotStart: mondayAt("10:00")})

	assert.Equal(t, "Company not found", apperr.Message(err))
}

func TestService_UpdateStatus_CustomerCancelsOwn(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Reservation{ID: 5, CompanyID: 1, UserID: 7, Status: domain.ReservationConfirmed}, nil)
	m.members.On("Get", mock.Anything, int64(1), int64(7)).Return(nil, nil)
	m.reservations.On("UpdateFields", mock.Anything, int64(5), map[string]any{
		"status":              domain.ReservationCancelled,
		"cancellation_reason": "sick",
	}).Return(nil)
	m.cache.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	r, err := svc.UpdateStatus(context.Background(), domain.Actor{UserID: 7, Role: domain.RoleUser}, 5,
		UpdateStatusRequest{Status: domain.ReservationCancelled, Reason: "sick"})

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, r.Status)
	assert.Equal(t, "sick", r.CancellationReason)
}

func TestService_UpdateStatus_CustomerCannotConfirm(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Reservation{ID: 5, CompanyID: 1, UserID: 7, Status: domain.ReservationPending}, nil)
	m.members.On("Get", mock.Anything, int64(1), int64(7)).Return(nil, nil)

	_, err := svc.UpdateStatus(context.Background(), domain.Actor{UserID: 7}, 5,
		UpdateStatusRequest{Status: domain.ReservationConfirmed})

	assert.ErrorIs(t, err, ErrCustomerCancelOnly)
	m.reservations.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateStatus_StrangerForbidden(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Reservation{ID: 5, CompanyID: 1, UserID: 7, Status: domain.ReservationPending}, nil)
	m.members.On("Get", mock.Anything, int64(1), int64(8)).Return(nil, nil)

	_, err := svc.UpdateStatus(context.Background(), domain.Actor{UserID: 8}, 5,
		UpdateStatusRequest{Status: domain.ReservationCancelled})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_UpdateStatus_TerminalNeverReopens(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Reservation{ID: 5, CompanyID: 1, UserID: 7, Status: domain.ReservationCompleted}, nil)
	m.members.On("Get", mock.Anything, int64(1), int64(3)).
		Return(&domain.CompanyMembership{Role: domain.MemberRoleWorker, IsActive: true}, nil)

	_, err := svc.UpdateStatus(context.Background(), domain.Actor{UserID: 3, Role: domain.RoleWorker}, 5,
		UpdateStatusRequest{Status: domain.ReservationConfirmed})

	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestService_UpdateStatus_StaffCompletes(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.Reservation{ID: 5, CompanyID: 1, UserID: 7, Status: domain.ReservationConfirmed}, nil)
	m.members.On("Get", mock.Anything, int64(1), int64(3)).
		Return(&domain.CompanyMembership{Role: domain.MemberRoleWorker, IsActive: true}, nil)
	m.reservations.On("UpdateFields", mock.Anything, int64(5), map[string]any{"status": domain.ReservationCompleted}).Return(nil)
	m.cache.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	r, err := svc.UpdateStatus(context.Background(), domain.Actor{UserID: 3, Role: domain.RoleWorker}, 5,
		UpdateStatusRequest{Status: domain.ReservationCompleted})

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCompleted, r.Status)
}

func TestService_Update_ExcludesItselfFromConflicts(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).Return(&domain.Reservation{
		ID: 5, CompanyID: 1, UserID: 7, Status: domain.ReservationPending,
		SlotStart: mondayAt("10:00"), SlotEnd: mondayAt("10:30"),
	}, nil)
	m.companies.On("GetWorkingHours", mock.Anything, int64(1), 1).
		Return(&domain.WorkingHours{OpenTime: "09:00", CloseTime: "18:00"}, nil)
	m.reservations.On("HasConflict", mock.Anything, int64(1), (*int64)(nil), mondayAt("10:15"), mondayAt("10:45"), int64(5)).Return(false, nil)
	m.reservations.On("UpdateFields", mock.Anything, int64(5), mock.Anything).Return(nil)
	m.cache.On("Invalidate", mock.Anything, int64(1)).Return(nil)

	start := mondayAt("10:15")
	r, err := svc.Update(context.Background(), domain.Actor{UserID: 7}, 5, UpdateReservationRequest{SlotStart: &start})

	require.NoError(t, err)
	assert.Equal(t, mondayAt("10:45"), r.SlotEnd, "duration is kept")
	m.reservations.AssertExpectations(t)
}

func TestService_Update_TerminalNotChangeable(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).Return(&domain.Reservation{
		ID: 5, CompanyID: 1, UserID: 7, Status: domain.ReservationCancelled,
	}, nil)

	start := mondayAt("10:15")
	_, err := svc.Update(context.Background(), domain.Actor{UserID: 7}, 5, UpdateReservationRequest{SlotStart: &start})

	assert.ErrorIs(t, err, ErrNotChangeable)
}

func TestService_GetAvailability_ComputesAndCaches(t *testing.T) {
	svc, m := newTestService()
	m.companies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1, IsActive: true}, nil)
	m.companies.On("GetSettings", mock.Anything, int64(1)).Return(defaultSettings(), nil)
	m.companies.On("GetWorkingHours", mock.Anything, int64(1), 1).
		Return(&domain.WorkingHours{Weekday: 1, OpenTime: "09:00", CloseTime: "11:00"}, nil)
	m.companies.On("ListWorkBreaksForDay", mock.Anything, int64(1), 1).Return([]domain.WorkBreak{}, nil)
	m.reservations.On("ListActiveBetween", mock.Anything, int64(1), (*int64)(nil), mondayAt("00:00"), mondayAt("00:00").AddDate(0, 0, 1)).
		Return([]domain.Reservation{{SlotStart: mondayAt("09:30"), SlotEnd: mondayAt("10:00"), Status: domain.ReservationPending}}, nil)
	m.cache.On("Get", mock.Anything, int64(1), "2030-03-04", (*int64)(nil)).Return(nil, nil)
	m.cache.On("Set", mock.Anything, int64(1), "2030-03-04", (*int64)(nil), mock.Anything).Return(nil)

	out, err := svc.GetAvailability(context.Background(), 1, "2030-03-04", nil)

	require.NoError(t, err)
	require.Len(t, out.Slots, 3)
	assert.Equal(t, mondayAt("09:00"), out.Slots[0].Start)
	assert.Equal(t, mondayAt("10:00"), out.Slots[1].Start)
	assert.Equal(t, "2030-03-04", out.Date)
	m.cache.AssertExpectations(t)
}

func TestService_GetAvailability_CacheHit(t *testing.T) {
	svc, m := newTestService()
	cached, _ := json.Marshal(Availability{Date: "2030-03-04", SlotMinutes: 30, Slots: []Slot{
		{Start: mondayAt("09:00"), End: mondayAt("09:30"), Available: true},
	}})
	m.companies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1}, nil)
	m.cache.On("Get", mock.Anything, int64(1), "2030-03-04", (*int64)(nil)).Return(cached, nil)

	out, err := svc.GetAvailability(context.Background(), 1, "2030-03-04", nil)

	require.NoError(t, err)
	require.Len(t, out.Slots, 1)
	m.companies.AssertNotCalled(t, "GetWorkingHours", mock.Anything, mock.Anything, mock.Anything)
	m.reservations.AssertNotCalled(t, "ListActiveBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetAvailability_BadDate(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetAvailability(context.Background(), 1, "04.03.2030", nil)

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestService_Get_ForbiddenForStrangers(t *testing.T) {
	svc, m := newTestService()
	m.reservations.On("GetByID", mock.Anything, int64(5)).Return(&domain.Reservation{ID: 5, CompanyID: 1, UserID: 7}, nil)
	m.members.On("Get", mock.Anything, int64(1), int64(8)).Return(nil, nil)

	_, err := svc.Get(context.Background(), domain.Actor{UserID: 8}, 5)
	assert.ErrorIs(t, err, ErrForbidden)

	r, err := svc.Get(context.Background(), domain.Actor{UserID: 99, Role: domain.RolePlatformAdmin}, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.ID)
}

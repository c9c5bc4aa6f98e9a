package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"driveconnect/internal/authz"
	"driveconnect/internal/domain"
	"driveconnect/internal/repository"
)

// Mock stores

type MockSlotStore struct {
	mock.Mock
}

func (m *MockSlotStore) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockSlotStore) Reserve(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSlotStore) Release(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		b.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) ListByStudent(ctx context.Context, studentID int64) ([]repository.BookingWithParty, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BookingWithParty), args.Error(1)
}

func (m *MockBookingStore) ListByInstructor(ctx context.Context, instructorID int64) ([]repository.BookingWithParty, error) {
	args := m.Called(ctx, instructorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BookingWithParty), args.Error(1)
}

func (m *MockBookingStore) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingStore) MarkCancelled(ctx context.Context, id int64, by domain.CancelledBy, refundAmount int64, at time.Time) error {
	args := m.Called(ctx, id, by, refundAmount, at)
	return args.Error(0)
}

type MockInstructorStore struct {
	mock.Mock
}

func (m *MockInstructorStore) GetByUserID(ctx context.Context, userID int64) (*domain.Instructor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Instructor), args.Error(1)
}

func (m *MockInstructorStore) ApplyPenalty(ctx context.Context, id int64, until time.Time, points int) error {
	args := m.Called(ctx, id, until, points)
	return args.Error(0)
}

type fixture struct {
	slots       *MockSlotStore
	bookings    *MockBookingStore
	instructors *MockInstructorStore
	service     *Service
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		slots:       new(MockSlotStore),
		bookings:    new(MockBookingStore),
		instructors: new(MockInstructorStore),
		now:         time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
	}
	f.service = NewService(f.slots, f.bookings, f.instructors, authz.NewResolver(f.instructors), DefaultParams(), zap.NewNop())
	f.service.now = func() time.Time { return f.now }
	return f
}

// lessonAfter formats a slot start that is exactly d after the fixture clock.
func (f *fixture) lessonAfter(d time.Duration) (date, timeOfDay string) {
	at := f.now.Add(d)
	return at.Format(domain.SlotDateLayout), at.Format(domain.SlotTimeLayout)
}

func (f *fixture) bookingAt(d time.Duration) *domain.Booking {
	date, tod := f.lessonAfter(d)
	return &domain.Booking{
		ID:           7,
		SlotID:       3,
		StudentID:    21,
		InstructorID: 5,
		Date:         date,
		Time:         tod,
		Duration:     2,
		Amount:       6000,
		Commission:   120,
		Net:          5880,
		Status:       domain.BookingConfirmed,
	}
}

var (
	studentIdent    = domain.Identity{UID: 21, Role: domain.RoleStudent}
	instructorIdent = domain.Identity{UID: 42, Role: domain.RoleInstructor}
)

func instructorProfile() *domain.Instructor {
	return &domain.Instructor{ID: 5, UserID: 42}
}

func TestReserve_Success(t *testing.T) {
	f := newFixture(t)
	date, tod := f.lessonAfter(72 * time.Hour)
	slot := &domain.Slot{ID: 3, InstructorID: 5, Date: date, Time: tod, Duration: 2, Price: 6000, Available: true}

	f.slots.On("GetByID", mock.Anything, int64(3)).Return(slot, nil)
	f.slots.On("Reserve", mock.Anything, int64(3)).Return(true, nil)
	f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)

	b, err := f.service.Reserve(context.Background(), 21, CreateBookingRequest{SlotID: 3, PaypalOrderID: "PP-1"})
	require.NoError(t, err)

	assert.Equal(t, int64(6000), b.Amount)
	assert.Equal(t, int64(120), b.Commission)
	assert.Equal(t, int64(5880), b.Net)
	assert.Equal(t, int64(21), b.StudentID)
	assert.Equal(t, int64(5), b.InstructorID)
	assert.Equal(t, date, b.Date)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, domain.PaymentPaid, b.PaymentStatus)
	f.slots.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
}

func TestReserve_SlotNotFound(t *testing.T) {
	f := newFixture(t)
	f.slots.On("GetByID", mock.Anything, int64(3)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.Reserve(context.Background(), 21, CreateBookingRequest{SlotID: 3})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestReserve_SlotAlreadyTaken(t *testing.T) {
	f := newFixture(t)
	date, tod := f.lessonAfter(72 * time.Hour)
	slot := &domain.Slot{ID: 3, Date: date, Time: tod, Price: 6000, Available: false}
	f.slots.On("GetByID", mock.Anything, int64(3)).Return(slot, nil)

	_, err := f.service.Reserve(context.Background(), 21, CreateBookingRequest{SlotID: 3})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestReserve_SlotInPast(t *testing.T) {
	f := newFixture(t)
	date, tod := f.lessonAfter(-2 * time.Hour)
	slot := &domain.Slot{ID: 3, Date: date, Time: tod, Price: 6000, Available: true}
	f.slots.On("GetByID", mock.Anything, int64(3)).Return(slot, nil)

	_, err := f.service.Reserve(context.Background(), 21, CreateBookingRequest{SlotID: 3})
	assert.ErrorIs(t, err, ErrSlotInPast)
	f.slots.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestReserve_LostConditionalUpdate(t *testing.T) {
	f := newFixture(t)
	date, tod := f.lessonAfter(72 * time.Hour)
	slot := &domain.Slot{ID: 3, Date: date, Time: tod, Price: 6000, Available: true}

	f.slots.On("GetByID", mock.Anything, int64(3)).Return(slot, nil)
	// The read said available, but another request won the guarded update.
	f.slots.On("Reserve", mock.Anything, int64(3)).Return(false, nil)

	_, err := f.service.Reserve(context.Background(), 21, CreateBookingRequest{SlotID: 3})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReserve_CompensatesWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	date, tod := f.lessonAfter(72 * time.Hour)
	slot := &domain.Slot{ID: 3, Date: date, Time: tod, Price: 6000, Available: true}

	f.slots.On("GetByID", mock.Anything, int64(3)).Return(slot, nil)
	f.slots.On("Reserve", mock.Anything, int64(3)).Return(true, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
	f.slots.On("Release", mock.Anything, int64(3)).Return(nil)

	_, err := f.service.Reserve(context.Background(), 21, CreateBookingRequest{SlotID: 3})
	assert.Error(t, err)
	f.slots.AssertCalled(t, "Release", mock.Anything, int64(3))
}

// raceSlotStore implements the conditional update with a real mutex so that
// concurrent Reserve calls exercise the engine's ordering for real.
type raceSlotStore struct {
	mu        sync.Mutex
	slot      domain.Slot
	reserves  int
	succeeded int
}

func (s *raceSlotStore) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.slot
	return &cp, nil
}

func (s *raceSlotStore) Reserve(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserves++
	if !s.slot.Available {
		return false, nil
	}
	s.slot.Available = false
	s.succeeded++
	return true, nil
}

func (s *raceSlotStore) Release(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slot.Available = true
	return nil
}

func TestReserve_ConcurrentAttemptsOneWinner(t *testing.T) {
	f := newFixture(t)
	date, tod := f.lessonAfter(72 * time.Hour)
	store := &raceSlotStore{slot: domain.Slot{ID: 3, InstructorID: 5, Date: date, Time: tod, Duration: 2, Price: 6000, Available: true}}

	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(store, f.bookings, f.instructors, authz.NewResolver(f.instructors), DefaultParams(), zap.NewNop())
	svc.now = f.service.now

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), 21, CreateBookingRequest{SlotID: 3})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	won, lost := 0, 0
	for err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrSlotUnavailable)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)
	assert.Equal(t, 1, store.succeeded)
}

func TestCancel_RefundTiers(t *testing.T) {
	cases := []struct {
		name       string
		until      time.Duration
		byIdent    domain.Identity
		wantRefund int64
		wantLabel  string
	}{
		{"48h exactly is full refund", 48 * time.Hour, studentIdent, 6000, "100% refund"},
		{"just under 48h is half", 48*time.Hour - time.Minute, studentIdent, 3000, "50% refund"},
		{"30h is half", 30 * time.Hour, studentIdent, 3000, "50% refund"},
		{"24h exactly is half", 24 * time.Hour, studentIdent, 3000, "50% refund"},
		{"just under 24h is nothing", 24*time.Hour - time.Minute, studentIdent, 0, "no refund"},
		{"instructor cancelling late still refunds all", 2 * time.Hour, instructorIdent, 6000, "100% refund (instructor cancellation)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			b := f.bookingAt(tc.until)

			f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
			if tc.byIdent.Role == domain.RoleInstructor {
				f.instructors.On("GetByUserID", mock.Anything, tc.byIdent.UID).Return(instructorProfile(), nil)
				f.instructors.On("ApplyPenalty", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
			}
			f.bookings.On("MarkCancelled", mock.Anything, b.ID, mock.Anything, tc.wantRefund, f.now).Return(nil)
			if tc.wantRefund >= 3000 {
				f.slots.On("Release", mock.Anything, b.SlotID).Return(nil)
			}

			res, err := f.service.Act(context.Background(), tc.byIdent, b.ID, ActionCancel)
			require.NoError(t, err)
			assert.Equal(t, tc.wantRefund, res.RefundAmount)
			assert.Equal(t, tc.wantLabel, res.RefundLabel)
			assert.Equal(t, domain.BookingCancelled, res.Status)
			f.bookings.AssertExpectations(t)
		})
	}
}

func TestCancel_SlotReleaseDependsOnRefund(t *testing.T) {
	t.Run("half refund reopens the slot", func(t *testing.T) {
		f := newFixture(t)
		b := f.bookingAt(30 * time.Hour)
		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		f.bookings.On("MarkCancelled", mock.Anything, b.ID, domain.CancelledByStudent, int64(3000), f.now).Return(nil)
		f.slots.On("Release", mock.Anything, b.SlotID).Return(nil)

		_, err := f.service.Act(context.Background(), studentIdent, b.ID, ActionCancel)
		require.NoError(t, err)
		f.slots.AssertCalled(t, "Release", mock.Anything, b.SlotID)
	})

	t.Run("zero refund keeps the slot blocked", func(t *testing.T) {
		f := newFixture(t)
		b := f.bookingAt(3 * time.Hour)
		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		f.bookings.On("MarkCancelled", mock.Anything, b.ID, domain.CancelledByStudent, int64(0), f.now).Return(nil)

		_, err := f.service.Act(context.Background(), studentIdent, b.ID, ActionCancel)
		require.NoError(t, err)
		f.slots.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})
}

func TestCancel_InstructorLateCancelPenalty(t *testing.T) {
	f := newFixture(t)
	b := f.bookingAt(5 * time.Hour)

	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	f.instructors.On("GetByUserID", mock.Anything, instructorIdent.UID).Return(instructorProfile(), nil)
	f.bookings.On("MarkCancelled", mock.Anything, b.ID, domain.CancelledByInstructor, int64(6000), f.now).Return(nil)
	f.slots.On("Release", mock.Anything, b.SlotID).Return(nil)
	f.instructors.On("ApplyPenalty", mock.Anything, int64(5), f.now.Add(7*24*time.Hour), 10).Return(nil)

	res, err := f.service.Act(context.Background(), instructorIdent, b.ID, ActionCancel)
	require.NoError(t, err)
	assert.True(t, res.PenaltyApplied)
	f.instructors.AssertExpectations(t)
	// the resolved profile is reused, one lookup total
	f.instructors.AssertNumberOfCalls(t, "GetByUserID", 1)
}

func TestCancel_InstructorEarlyCancelNoPenalty(t *testing.T) {
	f := newFixture(t)
	b := f.bookingAt(72 * time.Hour)

	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	f.instructors.On("GetByUserID", mock.Anything, instructorIdent.UID).Return(instructorProfile(), nil)
	f.bookings.On("MarkCancelled", mock.Anything, b.ID, domain.CancelledByInstructor, int64(6000), f.now).Return(nil)
	f.slots.On("Release", mock.Anything, b.SlotID).Return(nil)

	res, err := f.service.Act(context.Background(), instructorIdent, b.ID, ActionCancel)
	require.NoError(t, err)
	assert.False(t, res.PenaltyApplied)
	f.instructors.AssertNotCalled(t, "ApplyPenalty", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	b := f.bookingAt(72 * time.Hour)

	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	f.instructors.On("GetByUserID", mock.Anything, instructorIdent.UID).Return(instructorProfile(), nil)
	f.bookings.On("UpdateStatus", mock.Anything, b.ID, domain.BookingConfirmed).Return(nil)

	for i := 0; i < 2; i++ {
		res, err := f.service.Act(context.Background(), instructorIdent, b.ID, ActionConfirm)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingConfirmed, res.Status)
	}
	f.bookings.AssertNumberOfCalls(t, "UpdateStatus", 2)
}

func TestConfirm_StudentForbidden(t *testing.T) {
	f := newFixture(t)
	b := f.bookingAt(72 * time.Hour)
	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	_, err := f.service.Act(context.Background(), studentIdent, b.ID, ActionConfirm)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReject_ReleasesSlotUnconditionally(t *testing.T) {
	f := newFixture(t)
	// lesson is soon, which would block release on a cancel
	b := f.bookingAt(3 * time.Hour)

	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	f.instructors.On("GetByUserID", mock.Anything, instructorIdent.UID).Return(instructorProfile(), nil)
	f.bookings.On("UpdateStatus", mock.Anything, b.ID, domain.BookingRejected).Return(nil)
	f.slots.On("Release", mock.Anything, b.SlotID).Return(nil)

	res, err := f.service.Act(context.Background(), instructorIdent, b.ID, ActionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingRejected, res.Status)
	f.slots.AssertCalled(t, "Release", mock.Anything, b.SlotID)
}

func TestReject_StudentForbidden(t *testing.T) {
	f := newFixture(t)
	b := f.bookingAt(72 * time.Hour)
	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	_, err := f.service.Act(context.Background(), studentIdent, b.ID, ActionReject)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAct_AlreadyCancelled(t *testing.T) {
	for _, ident := range []domain.Identity{studentIdent, instructorIdent} {
		f := newFixture(t)
		b := f.bookingAt(72 * time.Hour)
		b.Status = domain.BookingCancelled

		f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		if ident.Role == domain.RoleInstructor {
			f.instructors.On("GetByUserID", mock.Anything, ident.UID).Return(instructorProfile(), nil)
		}

		_, err := f.service.Act(context.Background(), ident, b.ID, ActionCancel)
		assert.ErrorIs(t, err, ErrAlreadyCancelled, "caller role %s", ident.Role)
	}
}

func TestAct_InvalidAction(t *testing.T) {
	f := newFixture(t)
	b := f.bookingAt(72 * time.Hour)
	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	_, err := f.service.Act(context.Background(), studentIdent, b.ID, "complete")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestAct_StrangersForbidden(t *testing.T) {
	f := newFixture(t)
	b := f.bookingAt(72 * time.Hour)
	f.bookings.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	// another student
	_, err := f.service.Act(context.Background(), domain.Identity{UID: 77, Role: domain.RoleStudent}, b.ID, ActionCancel)
	assert.ErrorIs(t, err, ErrForbidden)

	// an instructor with a different profile
	f.instructors.On("GetByUserID", mock.Anything, int64(88)).Return(&domain.Instructor{ID: 9, UserID: 88}, nil)
	_, err = f.service.Act(context.Background(), domain.Identity{UID: 88, Role: domain.RoleInstructor}, b.ID, ActionCancel)
	assert.ErrorIs(t, err, ErrForbidden)
	f.bookings.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAct_BookingNotFound(t *testing.T) {
	f := newFixture(t)
	f.bookings.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.Act(context.Background(), studentIdent, 404, ActionCancel)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListForCaller_ShapesByRole(t *testing.T) {
	f := newFixture(t)
	rows := []repository.BookingWithParty{
		{Booking: *f.bookingAt(72 * time.Hour), PartyName: "Jean-Pierre Kalué"},
	}

	f.bookings.On("ListByStudent", mock.Anything, int64(21)).Return(rows, nil)
	views, err := f.service.ListForCaller(context.Background(), studentIdent)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Jean-Pierre Kalué", views[0].InstructorName)
	assert.Empty(t, views[0].StudentName)

	f.instructors.On("GetByUserID", mock.Anything, instructorIdent.UID).Return(instructorProfile(), nil)
	f.bookings.On("ListByInstructor", mock.Anything, int64(5)).Return(rows, nil)
	views, err = f.service.ListForCaller(context.Background(), instructorIdent)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Jean-Pierre Kalué", views[0].StudentName)
	assert.Empty(t, views[0].InstructorName)
}

func TestListForCaller_InstructorWithoutProfile(t *testing.T) {
	f := newFixture(t)
	f.instructors.On("GetByUserID", mock.Anything, instructorIdent.UID).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.ListForCaller(context.Background(), instructorIdent)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

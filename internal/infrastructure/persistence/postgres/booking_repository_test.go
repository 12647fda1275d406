package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"turfbook/internal/application/services/testhelpers"
	"turfbook/internal/domain"
	"turfbook/internal/infrastructure/persistence/postgres"
)

type BookingRepositoryTestSuite struct {
	suite.Suite
	testDB      *testhelpers.TestDatabase
	bookingRepo *postgres.BookingRepository
	groundRepo  *postgres.GroundRepository
	ground1     *domain.Ground
	ground2     *domain.Ground
	combined    *domain.Ground
}

func TestBookingRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed suite in short mode")
	}
	suite.Run(t, new(BookingRepositoryTestSuite))
}

func (s *BookingRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDatabase(s.T())
	s.bookingRepo = postgres.NewBookingRepository(s.testDB.DB.Pool)
	s.groundRepo = postgres.NewGroundRepository(s.testDB.DB.Pool)

	// The migration seeds the three grounds.
	ctx := context.Background()
	grounds, err := s.groundRepo.FindByNames(ctx, []string{domain.GroundOne, domain.GroundTwo, domain.GroundCombined})
	require.NoError(s.T(), err)
	require.Len(s.T(), grounds, 3)
	for _, g := range grounds {
		switch g.Name {
		case domain.GroundOne:
			s.ground1 = g
		case domain.GroundTwo:
			s.ground2 = g
		case domain.GroundCombined:
			s.combined = g
		}
	}
}

func (s *BookingRepositoryTestSuite) TearDownSuite() {
	s.testDB.Cleanup(s.T())
}

func (s *BookingRepositoryTestSuite) SetupTest() {
	s.testDB.CleanTables(s.T())
}

func (s *BookingRepositoryTestSuite) newBooking(ground *domain.Ground, hour int) *domain.Booking {
	start := time.Date(2030, 6, 15, hour, 0, 0, 0, time.UTC)
	return domain.NewBooking("Asha Rao", "+919876543210", "asha@example.com", ground.ID, start, 1400)
}

func (s *BookingRepositoryTestSuite) Test_CreateAndFindByID() {
	ctx := context.Background()
	t := s.T()

	booking := s.newBooking(s.ground1, 10)
	require.NoError(t, s.bookingRepo.Create(ctx, booking))

	found, err := s.bookingRepo.FindByID(ctx, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, booking.ID, found.ID)
	assert.Equal(t, domain.StatusPending, found.PaymentStatus)
	assert.Equal(t, int64(1400), found.TotalAmount)
	assert.Equal(t, 1, found.Duration)
	assert.True(t, booking.StartTime.Equal(found.StartTime))
	assert.Nil(t, found.GatewayOrderID)
	assert.Nil(t, found.FailureReason)
}

func (s *BookingRepositoryTestSuite) Test_FindByID_Missing() {
	ctx := context.Background()

	_, err := s.bookingRepo.FindByID(ctx, uuid.New())

	assert.ErrorIs(s.T(), err, postgres.ErrBookingNotFound)
}

func (s *BookingRepositoryTestSuite) Test_Update_PersistsTransition() {
	ctx := context.Background()
	t := s.T()

	booking := s.newBooking(s.ground1, 10)
	require.NoError(t, s.bookingRepo.Create(ctx, booking))

	require.NoError(t, booking.AttachOrder("order_1"))
	require.NoError(t, s.bookingRepo.Update(ctx, nil, booking))

	found, err := s.bookingRepo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, found.PaymentStatus)
	require.NotNil(t, found.GatewayOrderID)
	assert.Equal(t, "order_1", *found.GatewayOrderID)
}

func (s *BookingRepositoryTestSuite) Test_Update_MissingRow() {
	ctx := context.Background()

	booking := s.newBooking(s.ground1, 10)

	err := s.bookingRepo.Update(ctx, nil, booking)

	assert.ErrorIs(s.T(), err, postgres.ErrBookingNotFound)
}

func (s *BookingRepositoryTestSuite) Test_WithTx_RollbackDiscardsUpdate() {
	ctx := context.Background()
	t := s.T()

	booking := s.newBooking(s.ground1, 10)
	require.NoError(t, s.bookingRepo.Create(ctx, booking))

	sentinel := assert.AnError
	err := s.testDB.DB.WithTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, booking.ID)
		require.NoError(t, err)
		require.NoError(t, locked.AttachOrder("order_1"))
		require.NoError(t, s.bookingRepo.Update(ctx, tx, locked))
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	found, err := s.bookingRepo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, found.PaymentStatus)
	assert.Nil(t, found.GatewayOrderID)
}

func (s *BookingRepositoryTestSuite) Test_FindBlockingInWindow_FiltersStatusAndGround() {
	ctx := context.Background()
	t := s.T()

	day := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)

	processing := s.newBooking(s.ground1, 10)
	require.NoError(t, processing.AttachOrder("order_1"))
	require.NoError(t, s.bookingRepo.Create(ctx, processing))

	pending := s.newBooking(s.ground1, 11)
	require.NoError(t, s.bookingRepo.Create(ctx, pending))

	failed := s.newBooking(s.ground1, 12)
	require.NoError(t, failed.MarkFailed(domain.ReasonUserFailure))
	require.NoError(t, s.bookingRepo.Create(ctx, failed))

	otherGround := s.newBooking(s.ground2, 13)
	require.NoError(t, otherGround.AttachOrder("order_2"))
	require.NoError(t, s.bookingRepo.Create(ctx, otherGround))

	results, err := s.bookingRepo.FindBlockingInWindow(ctx,
		[]uuid.UUID{s.ground1.ID}, day, day.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, processing.ID, results[0].ID)
}

func (s *BookingRepositoryTestSuite) Test_FindBlockingInWindow_WindowBounds() {
	ctx := context.Background()
	t := s.T()

	day := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)

	inside := s.newBooking(s.ground1, 0)
	require.NoError(t, inside.AttachOrder("order_1"))
	require.NoError(t, s.bookingRepo.Create(ctx, inside))

	nextDay := domain.NewBooking("Ravi Iyer", "+919876543211", "ravi@example.com",
		s.ground1.ID, day.Add(24*time.Hour), 1400)
	require.NoError(t, nextDay.AttachOrder("order_2"))
	require.NoError(t, s.bookingRepo.Create(ctx, nextDay))

	results, err := s.bookingRepo.FindBlockingInWindow(ctx,
		[]uuid.UUID{s.ground1.ID}, day, day.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, inside.ID, results[0].ID)
}

func (s *BookingRepositoryTestSuite) Test_FindStaleUnpaid() {
	ctx := context.Background()
	t := s.T()

	stale := s.newBooking(s.ground1, 10)
	stale.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.bookingRepo.Create(ctx, stale))

	fresh := s.newBooking(s.ground1, 11)
	require.NoError(t, s.bookingRepo.Create(ctx, fresh))

	paid := s.newBooking(s.ground1, 12)
	paid.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, paid.AttachOrder("order_1"))
	require.NoError(t, paid.MarkPaid("pay_1", "sig", "upi", time.Now().UTC()))
	require.NoError(t, s.bookingRepo.Create(ctx, paid))

	results, err := s.bookingRepo.FindStaleUnpaid(ctx, time.Now().UTC().Add(-15*time.Minute), 100)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, stale.ID, results[0].ID)
}

func (s *BookingRepositoryTestSuite) Test_Delete() {
	ctx := context.Background()
	t := s.T()

	booking := s.newBooking(s.ground1, 10)
	require.NoError(t, s.bookingRepo.Create(ctx, booking))

	require.NoError(t, s.bookingRepo.Delete(ctx, booking.ID))

	_, err := s.bookingRepo.FindByID(ctx, booking.ID)
	assert.ErrorIs(t, err, postgres.ErrBookingNotFound)

	assert.ErrorIs(t, s.bookingRepo.Delete(ctx, booking.ID), postgres.ErrBookingNotFound)
}

func (s *BookingRepositoryTestSuite) Test_GroundRepository_SeededCatalogue() {
	ctx := context.Background()
	t := s.T()

	ground, err := s.groundRepo.FindByID(ctx, s.combined.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GroundCombined, ground.Name)
	assert.Equal(t, int64(2500), ground.Pricing[domain.PriceWeekendFirstHalf])

	_, err = s.groundRepo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, postgres.ErrGroundNotFound)

	partial, err := s.groundRepo.FindByNames(ctx, []string{domain.GroundOne, "Practice Net"})
	require.NoError(t, err)
	require.Len(t, partial, 1)
	assert.Equal(t, domain.GroundOne, partial[0].Name)
}

package review

import (
	"context"
	"testing"

	"fundi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	args := m.Called(ctx, rv)
	if rv != nil {
		rv.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockReviewRepo) FindByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

type MockBookingReader struct {
	mock.Mock
}

func (m *MockBookingReader) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func completedBooking() *domain.Booking {
	return &domain.Booking{ID: 42, CustomerID: 7, FundiID: 3, Status: domain.BookingCompleted}
}

func TestCreateReview_Happy(t *testing.T) {
	reviews := new(MockReviewRepo)
	bookings := new(MockBookingReader)
	svc := NewService(reviews, bookings)

	bookings.On("GetByID", mock.Anything, int64(42)).Return(completedBooking(), nil)
	reviews.On("FindByBookingID", mock.Anything, int64(42)).Return(nil, nil)
	reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	rv, err := svc.CreateReview(context.Background(), CreateReviewRequest{BookingID: 42, Rating: 5, Comment: "great", CustomerID: 7})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), rv.BookingID)
	assert.Equal(t, 5, rv.Rating)
}

func TestCreateReview_RatingBounds(t *testing.T) {
	svc := NewService(new(MockReviewRepo), new(MockBookingReader))

	_, err := svc.CreateReview(context.Background(), CreateReviewRequest{BookingID: 42, Rating: 0, CustomerID: 7})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.CreateReview(context.Background(), CreateReviewRequest{BookingID: 42, Rating: 6, CustomerID: 7})
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestCreateReview_OnlyCustomer(t *testing.T) {
	reviews := new(MockReviewRepo)
	bookings := new(MockBookingReader)
	svc := NewService(reviews, bookings)

	bookings.On("GetByID", mock.Anything, int64(42)).Return(completedBooking(), nil)

	_, err := svc.CreateReview(context.Background(), CreateReviewRequest{BookingID: 42, Rating: 4, CustomerID: 999})
	assert.ErrorIs(t, err, ErrNotAllowed)
	reviews.AssertNotCalled(t, "Create")
}

func TestCreateReview_RequiresCompletedBooking(t *testing.T) {
	reviews := new(MockReviewRepo)
	bookings := new(MockBookingReader)
	svc := NewService(reviews, bookings)

	b := completedBooking()
	b.Status = domain.BookingInProgress
	bookings.On("GetByID", mock.Anything, int64(42)).Return(b, nil)

	_, err := svc.CreateReview(context.Background(), CreateReviewRequest{BookingID: 42, Rating: 4, CustomerID: 7})
	assert.ErrorIs(t, err, ErrBookingNotCompleted)
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	reviews := new(MockReviewRepo)
	bookings := new(MockBookingReader)
	svc := NewService(reviews, bookings)

	bookings.On("GetByID", mock.Anything, int64(42)).Return(completedBooking(), nil)
	reviews.On("FindByBookingID", mock.Anything, int64(42)).Return(&domain.Review{ID: 1, BookingID: 42}, nil)

	_, err := svc.CreateReview(context.Background(), CreateReviewRequest{BookingID: 42, Rating: 4, CustomerID: 7})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestCreateReview_BookingNotFound(t *testing.T) {
	reviews := new(MockReviewRepo)
	bookings := new(MockBookingReader)
	svc := NewService(reviews, bookings)

	bookings.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateReview(context.Background(), CreateReviewRequest{BookingID: 404, Rating: 4, CustomerID: 7})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

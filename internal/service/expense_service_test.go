package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"spendly/internal/cache"
	apperrors "spendly/internal/errors"
	"spendly/internal/model"
	"spendly/internal/repository"
)

// MockExpenseRepository is a mock implementation of repository.ExpenseRepository.
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAnyByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteAny(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter repository.ExpenseFilter) ([]model.Expense, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) SummarizeByCategory(ctx context.Context, userID uuid.UUID) ([]model.CategorySummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategorySummary), args.Error(1)
}

// testCache points at a closed port; every operation behaves like a miss.
func testCache() *cache.Client {
	return cache.New("127.0.0.1:1", "", 0)
}

func validInput() ExpenseInput {
	return ExpenseInput{
		Title:    "Weekly groceries",
		Amount:   decimal.NewFromFloat(84.20),
		Category: model.CategoryFood,
		SpentAt:  time.Now(),
	}
}

func TestExpenseService_Create(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name        string
		mutate      func(*ExpenseInput)
		setupMock   func(*MockExpenseRepository)
		wantInvalid bool
	}{
		{
			name: "successful create",
			setupMock: func(m *MockExpenseRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Expense")).Return(nil)
			},
		},
		{
			name:        "zero amount",
			mutate:      func(in *ExpenseInput) { in.Amount = decimal.Zero },
			setupMock:   func(m *MockExpenseRepository) {},
			wantInvalid: true,
		},
		{
			name:        "negative amount",
			mutate:      func(in *ExpenseInput) { in.Amount = decimal.NewFromInt(-5) },
			setupMock:   func(m *MockExpenseRepository) {},
			wantInvalid: true,
		},
		{
			name:        "unknown category",
			mutate:      func(in *ExpenseInput) { in.Category = "gadgets" },
			setupMock:   func(m *MockExpenseRepository) {},
			wantInvalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockExpenseRepository)
			tt.setupMock(mockRepo)
			svc := NewExpenseService(mockRepo, testCache())

			in := validInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			expense, err := svc.Create(context.Background(), userID, in)
			if tt.wantInvalid {
				var validationErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				assert.Nil(t, expense)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, userID, expense.UserID)
				assert.Equal(t, in.Title, expense.Title)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestExpenseService_GetMapsNotFound(t *testing.T) {
	mockRepo := new(MockExpenseRepository)
	svc := NewExpenseService(mockRepo, testCache())

	userID, id := uuid.New(), uuid.New()
	mockRepo.On("FindByID", mock.Anything, userID, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperrors.ErrExpenseNotFound)
}

func TestExpenseService_ListRejectsUnknownCategory(t *testing.T) {
	svc := NewExpenseService(new(MockExpenseRepository), testCache())

	_, _, err := svc.List(context.Background(), uuid.New(), repository.ExpenseFilter{Category: "gadgets"})
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestExpenseService_Update(t *testing.T) {
	userID, id := uuid.New(), uuid.New()
	existing := &model.Expense{
		ID:       id,
		UserID:   userID,
		Title:    "Old title",
		Amount:   decimal.NewFromInt(10),
		Category: model.CategoryOther,
		SpentAt:  time.Now().AddDate(0, 0, -1),
	}

	mockRepo := new(MockExpenseRepository)
	mockRepo.On("FindByID", mock.Anything, userID, id).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, existing).Return(nil)

	svc := NewExpenseService(mockRepo, testCache())
	in := validInput()

	updated, err := svc.Update(context.Background(), userID, id, in)
	assert.NoError(t, err)
	assert.Equal(t, in.Title, updated.Title)
	assert.Equal(t, in.Category, updated.Category)
	assert.True(t, in.Amount.Equal(updated.Amount))
	mockRepo.AssertExpectations(t)
}

func TestExpenseService_DeleteMapsNotFound(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	mockRepo := new(MockExpenseRepository)
	mockRepo.On("Delete", mock.Anything, userID, id).Return(gorm.ErrRecordNotFound)

	svc := NewExpenseService(mockRepo, testCache())
	assert.ErrorIs(t, svc.Delete(context.Background(), userID, id), apperrors.ErrExpenseNotFound)
}

func TestExpenseService_DeleteAny(t *testing.T) {
	id, ownerID := uuid.New(), uuid.New()

	t.Run("resolves the owner before deleting", func(t *testing.T) {
		// The owner id drives the summary-cache invalidation, so the expense
		// must be looked up before it disappears.
		mockRepo := new(MockExpenseRepository)
		mockRepo.On("FindAnyByID", mock.Anything, id).
			Return(&model.Expense{ID: id, UserID: ownerID, Amount: decimal.NewFromInt(10)}, nil)
		mockRepo.On("DeleteAny", mock.Anything, id).Return(nil)

		svc := NewExpenseService(mockRepo, testCache())
		assert.NoError(t, svc.DeleteAny(context.Background(), id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockExpenseRepository)
		mockRepo.On("FindAnyByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewExpenseService(mockRepo, testCache())
		assert.ErrorIs(t, svc.DeleteAny(context.Background(), id), apperrors.ErrExpenseNotFound)
		mockRepo.AssertNotCalled(t, "DeleteAny")
	})
}

func TestExpenseService_CategorySummary(t *testing.T) {
	userID := uuid.New()
	rows := []model.CategorySummary{
		{Category: model.CategoryFood, Total: decimal.NewFromFloat(84.20), Count: 2},
		{Category: model.CategoryTransport, Total: decimal.NewFromFloat(30), Count: 1},
	}

	mockRepo := new(MockExpenseRepository)
	mockRepo.On("SummarizeByCategory", mock.Anything, userID).Return(rows, nil)

	svc := NewExpenseService(mockRepo, testCache())
	got, err := svc.CategorySummary(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, model.CategoryFood, got[0].Category)
	mockRepo.AssertExpectations(t)
}

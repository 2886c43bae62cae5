package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spendly/internal/cache"
	apperrors "spendly/internal/errors"
	"spendly/internal/model"
	"spendly/internal/repository"
)

const summaryCacheTTL = 5 * time.Minute

// ExpenseInput carries the writable fields of an expense.
type ExpenseInput struct {
	Title    string
	Amount   decimal.Decimal
	Category model.Category
	Note     string
	SpentAt  time.Time
}

func (in *ExpenseInput) validate() error {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.NewValidation("amount must be greater than zero")
	}
	if !in.Category.Valid() {
		return apperrors.NewValidation(fmt.Sprintf("unknown category %q", in.Category))
	}
	return nil
}

// ExpenseService exposes expense CRUD and aggregation, scoped to the owner.
type ExpenseService interface {
	Create(ctx context.Context, userID uuid.UUID, in ExpenseInput) (*model.Expense, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.ExpenseFilter) ([]model.Expense, int64, error)
	Update(ctx context.Context, userID, id uuid.UUID, in ExpenseInput) (*model.Expense, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAny(ctx context.Context, id uuid.UUID) error
	CategorySummary(ctx context.Context, userID uuid.UUID) ([]model.CategorySummary, error)
}

type expenseService struct {
	repo  repository.ExpenseRepository
	cache *cache.Client
}

// NewExpenseService builds an ExpenseService with repository and cache.
func NewExpenseService(repo repository.ExpenseRepository, cache *cache.Client) ExpenseService {
	return &expenseService{repo: repo, cache: cache}
}

func (s *expenseService) summaryCacheKey(userID uuid.UUID) string {
	return "expense:summary:" + userID.String()
}

func (s *expenseService) Create(ctx context.Context, userID uuid.UUID, in ExpenseInput) (*model.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	expense := &model.Expense{
		UserID:   userID,
		Title:    in.Title,
		Amount:   in.Amount,
		Category: in.Category,
		Note:     in.Note,
		SpentAt:  in.SpentAt,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	_ = s.cache.Delete(ctx, s.summaryCacheKey(userID))
	return expense, nil
}

func (s *expenseService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error) {
	expense, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) List(ctx context.Context, userID uuid.UUID, filter repository.ExpenseFilter) ([]model.Expense, int64, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, 0, apperrors.NewValidation(fmt.Sprintf("unknown category %q", filter.Category))
	}
	return s.repo.ListByUser(ctx, userID, filter)
}

func (s *expenseService) Update(ctx context.Context, userID, id uuid.UUID, in ExpenseInput) (*model.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	expense, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	expense.Title = in.Title
	expense.Amount = in.Amount
	expense.Category = in.Category
	expense.Note = in.Note
	expense.SpentAt = in.SpentAt

	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	_ = s.cache.Delete(ctx, s.summaryCacheKey(userID))
	return expense, nil
}

func (s *expenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return err
	}
	_ = s.cache.Delete(ctx, s.summaryCacheKey(userID))
	return nil
}

// DeleteAny removes any user's expense. Restricted to admins by the router.
// The expense is fetched first so the owner's summary cache can be dropped.
func (s *expenseService) DeleteAny(ctx context.Context, id uuid.UUID) error {
	expense, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return err
	}
	if err := s.repo.DeleteAny(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return err
	}
	_ = s.cache.Delete(ctx, s.summaryCacheKey(expense.UserID))
	return nil
}

// CategorySummary aggregates spend per category, cached briefly per user.
func (s *expenseService) CategorySummary(ctx context.Context, userID uuid.UUID) ([]model.CategorySummary, error) {
	key := s.summaryCacheKey(userID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.CategorySummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.repo.SummarizeByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rows); err == nil {
		_ = s.cache.Set(ctx, key, payload, summaryCacheTTL)
	}
	return rows, nil
}

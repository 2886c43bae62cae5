package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spendly/internal/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ExpenseFilter narrows and orders an expense listing.
type ExpenseFilter struct {
	Category model.Category
	From     *time.Time
	To       *time.Time
	Sort     string // column name, optionally prefixed with "-" for descending
	Page     int
	Limit    int
}

// sortColumns whitelists client-supplied sort keys.
var sortColumns = map[string]string{
	"spent_at":   "spent_at",
	"amount":     "amount",
	"created_at": "created_at",
}

// ExpenseRepository defines persistence operations for expenses.
// All lookups are scoped to a single owning user.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error)
	FindAnyByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAny(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, filter ExpenseFilter) ([]model.Expense, int64, error)
	SummarizeByCategory(ctx context.Context, userID uuid.UUID) ([]model.CategorySummary, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository builds a GORM-backed repository.
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// FindAnyByID looks an expense up regardless of owner. Admin only.
func (r *expenseRepository) FindAnyByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAny removes an expense regardless of owner. Admin only.
func (r *expenseRepository) DeleteAny(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *expenseRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter ExpenseFilter) ([]model.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Expense{}).Where("user_id = ?", userID)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		query = query.Where("spent_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("spent_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "spent_at DESC"
	if filter.Sort != "" {
		key, desc := filter.Sort, false
		if key[0] == '-' {
			key, desc = key[1:], true
		}
		if column, ok := sortColumns[key]; ok {
			order = column
			if desc {
				order += " DESC"
			}
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	var expenses []model.Expense
	err := query.Order(order).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&expenses).Error
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

func (r *expenseRepository) SummarizeByCategory(ctx context.Context, userID uuid.UUID) ([]model.CategorySummary, error) {
	var rows []model.CategorySummary
	err := r.db.WithContext(ctx).Model(&model.Expense{}).
		Select("category, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

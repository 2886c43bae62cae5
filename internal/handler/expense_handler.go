package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"spendly/internal/errors"
	"spendly/internal/middleware"
	"spendly/internal/model"
	"spendly/internal/repository"
	"spendly/internal/service"
)

// ExpenseHandler handles expense endpoints.
type ExpenseHandler struct {
	expenseService service.ExpenseService
	dev            bool
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(expenseService service.ExpenseService, dev bool) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, dev: dev}
}

// ExpenseRequest represents an expense create/update payload.
type ExpenseRequest struct {
	Title    string          `json:"title" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Category model.Category  `json:"category" validate:"required"`
	Note     string          `json:"note"`
	SpentAt  time.Time       `json:"spent_at" validate:"required"`
}

func (r *ExpenseRequest) toInput() service.ExpenseInput {
	return service.ExpenseInput{
		Title:    r.Title,
		Amount:   r.Amount,
		Category: r.Category,
		Note:     r.Note,
		SpentAt:  r.SpentAt,
	}
}

// ExpenseListResponse is a paginated expense listing.
type ExpenseListResponse struct {
	Expenses []model.Expense `json:"expenses"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

func (h *ExpenseHandler) mapError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err, h.dev)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// Create godoc
// @Summary Create an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense payload"
// @Success 201 {object} model.Expense
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	expense, err := h.expenseService.Create(c.Request().Context(), user.ID, req.toInput())
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusCreated, expense)
}

// List godoc
// @Summary List the authenticated user's expenses
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Param sort query string false "Sort key: spent_at, amount or created_at, prefix with - for descending"
// @Param category query string false "Filter by category"
// @Param from query string false "Filter: spent on or after (YYYY-MM-DD)"
// @Param to query string false "Filter: spent on or before (YYYY-MM-DD)"
// @Success 200 {object} ExpenseListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		return err
	}

	expenses, total, err := h.expenseService.List(c.Request().Context(), user.ID, filter)
	if err != nil {
		return h.mapError(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	return c.JSON(http.StatusOK, ExpenseListResponse{
		Expenses: expenses,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// Get godoc
// @Summary Get one expense by id
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} model.Expense
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expense id")
	}

	expense, err := h.expenseService.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, expense)
}

// Update godoc
// @Summary Update an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body ExpenseRequest true "Expense payload"
// @Success 200 {object} model.Expense
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /expenses/{id} [patch]
func (h *ExpenseHandler) Update(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expense id")
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	expense, err := h.expenseService.Update(c.Request().Context(), user.ID, id, req.toInput())
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, expense)
}

// Delete godoc
// @Summary Delete an expense
// @Tags expenses
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204 "deleted"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expense id")
	}

	if err := h.expenseService.Delete(c.Request().Context(), user.ID, id); err != nil {
		return h.mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteAny godoc
// @Summary Delete any user's expense (admin)
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204 "deleted"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteAny(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid expense id")
	}

	if err := h.expenseService.DeleteAny(c.Request().Context(), id); err != nil {
		return h.mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Summary godoc
// @Summary Aggregate the authenticated user's spend per category
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.CategorySummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /expenses/summary [get]
func (h *ExpenseHandler) Summary(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	rows, err := h.expenseService.CategorySummary(c.Request().Context(), user.ID)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, rows)
}

func parseExpenseFilter(c echo.Context) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter

	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		filter.Page = page
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		filter.Limit = limit
	}
	filter.Sort = c.QueryParam("sort")
	filter.Category = model.Category(c.QueryParam("category"))

	const dateLayout = "2006-01-02"
	if v := c.QueryParam("from"); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
		}
		filter.From = &from
	}
	if v := c.QueryParam("to"); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
		}
		// inclusive end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}

	return filter, nil
}

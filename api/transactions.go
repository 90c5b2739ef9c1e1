package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nemopss/expense-tracker/backend/db"
	"github.com/nemopss/expense-tracker/backend/events"
	"github.com/nemopss/expense-tracker/backend/logger"
	"github.com/nemopss/expense-tracker/backend/models"
	"github.com/nemopss/expense-tracker/backend/report"
)

// GetTransactions godoc
// @Summary Monthly buckets
// @Description Groups the user's transactions by calendar month, sums them and sorts by month.
// @Description Months of different years merge unless group=year_month is given.
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param group query string false "Grouping key" Enums(month, year_month)
// @Success 200 {object} models.DataResponse{data=[]models.MonthlyBucket}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /transaction [get]
func (h *Handler) GetTransactions(c *gin.Context) {
	grouping, ok := report.ParseGrouping(c.Query("group"))
	if !ok {
		fail(c, http.StatusBadRequest, "group must be 'month' or 'year_month'")
		return
	}

	buckets, err := h.buckets(c, grouping)
	if err != nil {
		handleError(c, logger.OpReport, err)
		return
	}
	respond(c, http.StatusOK, buckets)
}

func (h *Handler) buckets(c *gin.Context, g report.Grouping) ([]models.MonthlyBucket, error) {
	transactions, err := h.storage.ListAllTransactions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		return nil, err
	}
	return report.Group(transactions, g), nil
}

// GetStats godoc
// @Summary Derived statistics
// @Description Total, mean per month, highest month, trend, category breakdown and a chart series.
// @Description The week series is an estimate spread from monthly totals.
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param timeframe query string false "Series bucketing" Enums(week, month, year)
// @Param group query string false "Grouping key" Enums(month, year_month)
// @Success 200 {object} models.DataResponse{data=report.Stats}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /transaction/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	tf, ok := report.ParseTimeFrame(c.Query("timeframe"))
	if !ok {
		fail(c, http.StatusBadRequest, "timeframe must be 'week', 'month' or 'year'")
		return
	}
	grouping, ok := report.ParseGrouping(c.Query("group"))
	if !ok {
		fail(c, http.StatusBadRequest, "group must be 'month' or 'year_month'")
		return
	}

	buckets, err := h.buckets(c, grouping)
	if err != nil {
		handleError(c, logger.OpReport, err)
		return
	}
	stats := report.Compute(buckets, tf, h.now())

	categories, err := h.storage.GetCategories(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		handleError(c, logger.OpReport, err)
		return
	}
	byID := make(map[int64]models.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}
	for i := range stats.Categories {
		if cat, ok := byID[stats.Categories[i].CategoryID]; ok {
			stats.Categories[i].Label = cat.Label
			stats.Categories[i].Icon = cat.Icon
		}
	}

	respond(c, http.StatusOK, stats)
}

// ListTransactions godoc
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param category_id query int false "Category ID"
// @Param min_amount query number false "Minimum amount"
// @Param max_amount query number false "Maximum amount"
// @Param from query string false "First date, YYYY-MM-DD"
// @Param to query string false "Last date, YYYY-MM-DD"
// @Param sort query string false "Date order" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.DataResponse{data=models.ListTransactionsResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /transaction/list [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		handleError(c, logger.OpList, err)
		return
	}

	transactions, total, err := h.storage.ListTransactions(c.Request.Context(), currentUser(c).ID, filter)
	if err != nil {
		handleError(c, logger.OpList, err)
		return
	}

	page, limit := db.NormalizePage(filter.Page, filter.Limit)
	respond(c, http.StatusOK, models.ListTransactionsResponse{
		Transactions: transactions,
		Total:        total,
		Page:         page,
		Limit:        limit,
	})
}

func parseFilter(c *gin.Context) (db.TransactionFilter, error) {
	f := db.TransactionFilter{Sort: c.Query("sort")}

	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, models.NewValidationError("category_id", "Invalid category_id")
		}
		f.CategoryID = id
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_amount", &f.MinAmount}, {"max_amount", &f.MaxAmount}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, models.Validationf(p.name, "%s must be a number", p.name)
		}
		*p.dst = &d
	}
	for _, p := range []struct {
		name string
		dst  *models.Date
	}{{"from", &f.From}, {"to", &f.To}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		d, err := models.ParseDate(v)
		if err != nil {
			return f, models.Validationf(p.name, "%s must be a date (YYYY-MM-DD)", p.name)
		}
		*p.dst = d
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &f.Page}, {"limit", &f.Limit}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, models.Validationf(p.name, "%s must be a positive integer", p.name)
		}
		*p.dst = n
	}
	return f, nil
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.DataResponse{data=models.Transaction}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /transaction/{id} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	transaction, err := h.storage.GetTransaction(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		handleError(c, logger.OpRead, err)
		return
	}
	respond(c, http.StatusOK, transaction)
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description category_id must reference one of the caller's categories
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param transaction body models.CreateTransaction true "Transaction"
// @Success 201 {object} models.DataResponse{data=models.Transaction}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /transaction [post]
func (h *Handler) CreateTransaction(c *gin.Context) {
	var payload models.CreateTransaction
	if !bindJSON(c, &payload) {
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	transaction := payload.Transaction(user.ID)
	if err := transaction.Validate(); err != nil {
		handleError(c, logger.OpCreate, err)
		return
	}
	if err := h.checkCategory(c, transaction.CategoryID); err != nil {
		handleError(c, logger.OpCreate, err)
		return
	}

	if err := h.storage.CreateTransaction(ctx, &transaction); err != nil {
		handleError(c, logger.OpCreate, err)
		return
	}
	h.publish(ctx, events.Created, events.EntityTransaction, transaction.ID, user.ID)
	respond(c, http.StatusCreated, transaction)
}

// checkCategory rejects category ids that do not name one of the caller's categories.
func (h *Handler) checkCategory(c *gin.Context, categoryID int64) error {
	exists, err := h.storage.CategoryExists(c.Request.Context(), categoryID, currentUser(c).ID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewValidationError("category_id", "Invalid category_id")
	}
	return nil
}

// PatchTransaction godoc
// @Summary Partially update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Transaction ID"
// @Param transaction body models.UpdateTransaction true "Fields to change"
// @Success 200 {object} models.DataResponse{data=models.Transaction}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /transaction/{id} [patch]
func (h *Handler) PatchTransaction(c *gin.Context) {
	var payload models.UpdateTransaction
	h.updateTransaction(c, &payload, func(t *models.Transaction) { payload.Apply(t) })
}

// UpdateTransaction godoc
// @Summary Replace a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Transaction ID"
// @Param transaction body models.CreateTransaction true "Transaction"
// @Success 200 {object} models.DataResponse{data=models.Transaction}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /transaction/{id} [put]
func (h *Handler) UpdateTransaction(c *gin.Context) {
	var payload models.CreateTransaction
	h.updateTransaction(c, &payload, func(t *models.Transaction) {
		replacement := payload.Transaction(t.UserID)
		replacement.ID = t.ID
		*t = replacement
	})
}

func (h *Handler) updateTransaction(c *gin.Context, payload any, apply func(*models.Transaction)) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if !bindJSON(c, payload) {
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	transaction, err := h.storage.GetTransaction(ctx, id, user.ID)
	if err != nil {
		handleError(c, logger.OpUpdate, err)
		return
	}

	previousCategory := transaction.CategoryID
	apply(transaction)
	if err := transaction.Validate(); err != nil {
		handleError(c, logger.OpUpdate, err)
		return
	}
	if transaction.CategoryID != previousCategory {
		if err := h.checkCategory(c, transaction.CategoryID); err != nil {
			handleError(c, logger.OpUpdate, err)
			return
		}
	}

	if err := h.storage.UpdateTransaction(ctx, transaction); err != nil {
		handleError(c, logger.OpUpdate, err)
		return
	}
	h.publish(ctx, events.Updated, events.EntityTransaction, transaction.ID, user.ID)
	respond(c, http.StatusOK, transaction)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.DataResponse{data=models.DeletedResponse}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /transaction/{id} [delete]
func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := currentUser(c)
	if err := h.storage.DeleteTransaction(ctx, id, user.ID); err != nil {
		handleError(c, logger.OpDelete, err)
		return
	}
	h.publish(ctx, events.Deleted, events.EntityTransaction, id, user.ID)
	respond(c, http.StatusOK, models.DeletedResponse{ID: id})
}

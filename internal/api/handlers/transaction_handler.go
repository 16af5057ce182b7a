package handlers

import (
	"errors"
	"strconv"

	"swipespend/internal/dto"
	"swipespend/internal/service"

	"github.com/gocarina/gocsv"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
	logger             *zap.Logger
}

func NewTransactionHandler(transactionService *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// List godoc
// @Summary List transactions
// @Description List the user's transactions, most recent first, with pagination
// @Tags transactions
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.TransactionListResponse
// @Security Bearer
// @Router /transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	transactions, total, err := h.transactionService.List(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Listing transactions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch transactions",
		})
	}

	return c.JSON(dto.TransactionListResponse{
		Transactions: dto.FromTransactions(transactions),
		Pagination: dto.Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+limit < total,
		},
	})
}

// Categorize godoc
// @Summary Categorize a transaction
// @Description Assign a category to a transaction; both must belong to the user
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.CategorizeRequest true "Assignment"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string
// @Security Bearer
// @Router /transactions/categorize [post]
func (h *TransactionHandler) Categorize(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CategorizeRequest
	if err := c.BodyParser(&req); err != nil || req.TransactionID == "" || req.CategoryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Both transaction_id and category_id are required",
		})
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found",
		})
	}

	tx, err := h.transactionService.Categorize(c.Context(), userID, req.TransactionID, categoryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Transaction not found",
			})
		case errors.Is(err, service.ErrCategoryNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		h.logger.Error("Categorize failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to categorize transaction",
		})
	}

	return c.JSON(dto.FromTransaction(tx))
}

// Uncategorize godoc
// @Summary Uncategorize a transaction
// @Description Move a transaction back to the Uncategorized bucket
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.UncategorizeRequest true "Transaction"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string
// @Security Bearer
// @Router /transactions/uncategorize [post]
func (h *TransactionHandler) Uncategorize(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.UncategorizeRequest
	if err := c.BodyParser(&req); err != nil || req.TransactionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "transaction_id is required",
		})
	}

	tx, err := h.transactionService.Uncategorize(c.Context(), userID, req.TransactionID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Transaction not found",
			})
		}
		h.logger.Error("Uncategorize failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to uncategorize transaction",
		})
	}

	return c.JSON(dto.FromTransaction(tx))
}

// Uncategorized godoc
// @Summary List uncategorized expenses
// @Description The swipe queue: expense transactions still in the Uncategorized bucket
// @Tags transactions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security Bearer
// @Router /transactions/uncategorized [get]
func (h *TransactionHandler) Uncategorized(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	transactions, err := h.transactionService.ListUncategorized(c.Context(), userID)
	if err != nil {
		h.logger.Error("Listing uncategorized transactions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch uncategorized transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": dto.FromTransactions(transactions),
		"count":        len(transactions),
	})
}

// Categorized godoc
// @Summary List categorized expenses
// @Description Expense transactions in normal categories, excluding Uncategorized and Income
// @Tags transactions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security Bearer
// @Router /transactions/categorized [get]
func (h *TransactionHandler) Categorized(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	transactions, err := h.transactionService.ListCategorized(c.Context(), userID)
	if err != nil {
		h.logger.Error("Listing categorized transactions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch categorized transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": dto.FromTransactions(transactions),
		"count":        len(transactions),
	})
}

// Export godoc
// @Summary Export the ledger as CSV
// @Tags transactions
// @Produce text/csv
// @Success 200 {string} string "CSV document"
// @Security Bearer
// @Router /transactions/export [get]
func (h *TransactionHandler) Export(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	transactions, err := h.transactionService.ListAll(c.Context(), userID)
	if err != nil {
		h.logger.Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export transactions",
		})
	}

	csv, err := gocsv.MarshalString(dto.ToCSVRows(transactions))
	if err != nil {
		h.logger.Error("CSV marshalling failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export transactions",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	return c.SendString(csv)
}

package handlers

import (
	"errors"

	"swipespend/internal/dto"
	"swipespend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// List godoc
// @Summary List categories for the swipe screen
// @Description Visible categories ordered by name; the hidden Uncategorized bucket is excluded
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security Bearer
// @Router /categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	categories, err := h.categoryService.ListSwipeable(c.Context(), userID)
	if err != nil {
		h.logger.Error("Listing categories failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch categories",
		})
	}

	return c.JSON(fiber.Map{
		"categories": dto.FromCategories(categories),
	})
}

// ListManageable godoc
// @Summary List manageable categories
// @Description Visible categories the user can rename or delete, oldest first, with the limit counters
// @Tags categories
// @Produce json
// @Success 200 {object} dto.CategoryListResponse
// @Security Bearer
// @Router /categories/manage [get]
func (h *CategoryHandler) ListManageable(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	categories, err := h.categoryService.ListManageable(c.Context(), userID)
	if err != nil {
		h.logger.Error("Listing manageable categories failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch categories",
		})
	}

	return c.JSON(dto.CategoryListResponse{
		Categories:    dto.FromCategories(categories),
		MaxCategories: service.MaxCategories,
		CurrentCount:  len(categories),
	})
}

// Create godoc
// @Summary Create a category
// @Description Create a visible category; name must be unique and the per-user limit holds
// @Tags categories
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security Bearer
// @Router /categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	category, err := h.categoryService.Create(c.Context(), userID, req.Name, req.Color)
	if err != nil {
		return h.mapCategoryError(c, err, "Failed to create category")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromCategory(category))
}

// Update godoc
// @Summary Rename or recolor a category
// @Tags categories
// @Accept json
// @Produce json
// @Param categoryId path string true "Category id"
// @Param request body dto.UpdateCategoryRequest true "Category"
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security Bearer
// @Router /categories/{categoryId} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	categoryID, err := uuid.Parse(c.Params("categoryId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found",
		})
	}

	var req dto.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	category, err := h.categoryService.Update(c.Context(), userID, categoryID, req.Name, req.Color)
	if err != nil {
		return h.mapCategoryError(c, err, "Failed to update category")
	}

	return c.JSON(dto.FromCategory(category))
}

// Delete godoc
// @Summary Delete a category
// @Description Delete a category; its transactions are moved to Uncategorized
// @Tags categories
// @Produce json
// @Param categoryId path string true "Category id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security Bearer
// @Router /categories/{categoryId} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	categoryID, err := uuid.Parse(c.Params("categoryId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found",
		})
	}

	if err := h.categoryService.Delete(c.Context(), userID, categoryID); err != nil {
		return h.mapCategoryError(c, err, "Failed to delete category")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category deleted. All its transactions moved to uncategorized.",
	})
}

// mapCategoryError turns the service sentinels into specific, actionable
// responses; limit and uniqueness violations are everyday user errors and
// must not look like generic failures.
func (h *CategoryHandler) mapCategoryError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrInvalidCategoryName):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category name must be between 1 and 50 characters",
		})
	case errors.Is(err, service.ErrCategoryLimit):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Category limit reached",
			"message": "You can only have up to 20 categories",
		})
	case errors.Is(err, service.ErrCategoryExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Category already exists",
			"message": "A category with this name already exists",
		})
	case errors.Is(err, service.ErrCategoryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found",
		})
	case errors.Is(err, service.ErrSystemCategory):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Category not found or cannot be modified",
		})
	}
	h.logger.Error(fallback, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

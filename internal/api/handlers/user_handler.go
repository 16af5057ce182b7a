package handlers

import (
	"errors"

	"swipespend/internal/dto"
	"swipespend/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Progress godoc
// @Summary Get user progress
// @Tags user
// @Produce json
// @Success 200 {object} dto.ProgressResponse
// @Security Bearer
// @Router /user/progress [get]
func (h *UserHandler) Progress(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetProgress(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Fetching progress failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch progress",
		})
	}

	return c.JSON(dto.ProgressResponse{
		IsBankConnected: user.IsBankConnected,
		DisplayCurrency: user.DisplayCurrency,
		WalkthroughDone: user.WalkthroughDone,
	})
}

// UpdateCurrency godoc
// @Summary Update display currency
// @Tags user
// @Accept json
// @Produce json
// @Param request body dto.UpdateCurrencyRequest true "Currency"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Security Bearer
// @Router /user/currency [post]
func (h *UserHandler) UpdateCurrency(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateCurrencyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.userService.UpdateCurrency(c.Context(), userID, req.Currency); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// CompleteWalkthrough godoc
// @Summary Mark the walkthrough as completed
// @Tags user
// @Produce json
// @Success 200 {object} map[string]bool
// @Security Bearer
// @Router /user/walkthrough-complete [post]
func (h *UserHandler) CompleteWalkthrough(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.userService.CompleteWalkthrough(c.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Walkthrough update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update walkthrough state",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

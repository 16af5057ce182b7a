package handlers

import (
	"errors"

	"swipespend/internal/dto"
	"swipespend/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PlaidHandler struct {
	plaidService *service.PlaidService
	syncService  *service.SyncService
	logger       *zap.Logger
}

func NewPlaidHandler(plaidService *service.PlaidService, syncService *service.SyncService, logger *zap.Logger) *PlaidHandler {
	return &PlaidHandler{
		plaidService: plaidService,
		syncService:  syncService,
		logger:       logger,
	}
}

// CreateLinkToken godoc
// @Summary Create a Plaid link token
// @Description Start the bank link flow for the authenticated user
// @Tags plaid
// @Accept json
// @Produce json
// @Param request body dto.LinkTokenRequest false "Link token request"
// @Success 200 {object} dto.LinkTokenResponse
// @Security Bearer
// @Router /plaid/link/token [post]
func (h *PlaidHandler) CreateLinkToken(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.LinkTokenRequest
	_ = c.BodyParser(&req) // body is optional

	platform := c.Get("X-Device-Platform")
	token, err := h.plaidService.CreateLinkToken(c.Context(), userID, req.RequestedDays, platform)
	if err != nil {
		h.logger.Error("Link token creation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not create link token",
		})
	}

	return c.JSON(dto.LinkTokenResponse{LinkToken: token})
}

// ExchangePublicToken godoc
// @Summary Exchange a public token
// @Description Complete the link flow: store the credential, bootstrap default categories and run the initial sync
// @Tags plaid
// @Accept json
// @Produce json
// @Param request body dto.ExchangeTokenRequest true "Public token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security Bearer
// @Router /plaid/exchange-public-token [post]
func (h *PlaidHandler) ExchangePublicToken(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.ExchangeTokenRequest
	if err := c.BodyParser(&req); err != nil || req.PublicToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "public_token is required",
		})
	}

	if err := h.plaidService.ExchangePublicToken(c.Context(), userID, req.PublicToken); err != nil {
		h.logger.Error("Public token exchange failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not exchange public token",
		})
	}

	// The access token never goes back to the client.
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Token exchanged successfully",
	})
}

// Sync godoc
// @Summary Sync transactions
// @Description Run one reconciliation pass against the provider changefeed
// @Tags plaid
// @Produce json
// @Success 200 {object} dto.SyncResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Security Bearer
// @Router /plaid/transactions/sync [post]
func (h *PlaidHandler) Sync(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	result, err := h.syncService.Sync(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotLinked):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No linked bank account",
			})
		case errors.Is(err, service.ErrNotBootstrapped):
			h.logger.Error("Sync before category bootstrap", zap.String("user_id", userID.String()))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Account not fully set up",
			})
		}
		h.logger.Error("Sync failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to sync transactions",
		})
	}

	return c.JSON(dto.SyncResponse{
		Added:    result.Added,
		Modified: result.Modified,
		Removed:  result.Removed,
		Cursor:   result.Cursor,
	})
}

// Webhook godoc
// @Summary Provider webhook
// @Description Receive provider notifications; only TRANSACTIONS/SYNC_UPDATES_AVAILABLE triggers a sync
// @Tags plaid
// @Accept json
// @Produce json
// @Param request body dto.WebhookRequest true "Webhook payload"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /plaid/transactions/updates [post]
func (h *PlaidHandler) Webhook(c *fiber.Ctx) error {
	var req dto.WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	result, err := h.syncService.HandleWebhook(c.Context(), req.WebhookType, req.WebhookCode, req.ItemID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("Webhook sync failed",
			zap.String("item_id", req.ItemID),
			zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to sync transactions",
		})
	}

	if result == nil {
		// Unhandled webhook subtype, acknowledge and move on.
		return c.JSON(fiber.Map{"success": true})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"summary": dto.SyncResponse{
			Added:    result.Added,
			Modified: result.Modified,
			Removed:  result.Removed,
			Cursor:   result.Cursor,
		},
	})
}

// IsBankConnected godoc
// @Summary Check bank connection
// @Tags plaid
// @Produce json
// @Success 200 {object} map[string]bool
// @Security Bearer
// @Router /plaid/is-bank-connected [get]
func (h *PlaidHandler) IsBankConnected(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	connected, err := h.plaidService.IsBankConnected(c.Context(), userID)
	if err != nil {
		h.logger.Error("Connection check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong with the request",
		})
	}

	return c.JSON(fiber.Map{"is_bank_connected": connected})
}

// RemoveItem godoc
// @Summary Unlink the bank account
// @Description Revoke the provider item and clear the stored credential; the ledger is kept
// @Tags plaid
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security Bearer
// @Router /plaid/item/remove [post]
func (h *PlaidHandler) RemoveItem(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.plaidService.RemoveItem(c.Context(), userID); err != nil {
		if errors.Is(err, service.ErrNotLinked) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No linked bank account",
			})
		}
		h.logger.Error("Item removal failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not unlink bank account",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Bank account unlinked",
	})
}

package stake

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stakevault/stakevault/internal/accounts"
	"github.com/stakevault/stakevault/internal/derive"
	"github.com/stakevault/stakevault/internal/identity"
	"github.com/stakevault/stakevault/internal/token"
)

// Handler exposes staking HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a staking HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type initializeRequest struct {
	Caller    string `json:"caller"`
	TokenType string `json:"token_type"`
}

// Initialize provisions the vault for a token type.
func (h *Handler) Initialize(c *fiber.Ctx) error {
	var req initializeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, err := identity.Parse(req.Caller)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tokenType, err := identity.Parse(req.TokenType)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Initialize(c.UserContext(), InitializeInput{Caller: caller, TokenType: tokenType})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUnauthorized):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, accounts.ErrAccountExists):
			return fiber.NewError(http.StatusConflict, "vault already exists for token type")
		case errors.Is(err, token.ErrUnknownMint):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"vault_address": res.VaultAddress.String(),
		"nonce":         res.Nonce,
	})
}

type depositRequest struct {
	Caller        string `json:"caller"`
	TokenType     string `json:"token_type"`
	SourceAccount string `json:"source_account"`
	VaultAddress  string `json:"vault_address"`
	VaultNonce    uint8  `json:"vault_nonce"`
	Amount        int64  `json:"amount"`
}

// Deposit stakes tokens into the vault.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	in := DepositInput{VaultNonce: req.VaultNonce, Amount: req.Amount}
	var err error
	if in.Caller, err = identity.Parse(req.Caller); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if in.TokenType, err = identity.Parse(req.TokenType); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if in.SourceAccount, err = identity.Parse(req.SourceAccount); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if in.VaultAddress, err = identity.Parse(req.VaultAddress); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Deposit(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, derive.ErrAddressMismatch):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrVaultNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, token.ErrTransferFailed):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"entry_address": res.EntryAddress.String(),
		"amount":        res.Amount,
		"total_staked":  res.TotalStaked,
		"deposit_ts":    res.DepositTS,
	})
}

type withdrawRequest struct {
	Caller string `json:"caller"`
}

// Withdraw is the declared withdrawal surface. It currently mutates nothing.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	caller, err := identity.Parse(req.Caller)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Withdraw(c.UserContext(), WithdrawInput{Caller: caller}); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Position returns the stake ledger entry for an owner.
func (h *Handler) Position(c *fiber.Ctx) error {
	owner, err := identity.Parse(c.Params("owner"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.service.Position(c.UserContext(), owner)
	if err != nil {
		if errors.Is(err, ErrNoPosition) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"owner":        entry.Owner.String(),
		"total_staked": entry.Amount,
		"deposit_ts":   entry.DepositTS,
	})
}

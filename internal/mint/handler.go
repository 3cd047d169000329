package mint

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stakevault/stakevault/internal/identity"
	"github.com/stakevault/stakevault/internal/token"
)

// Handler exposes token issuance HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an issuance HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createMintRequest struct {
	Authority string `json:"authority"`
	Decimals  uint8  `json:"decimals"`
}

// CreateMint registers a new token type.
func (h *Handler) CreateMint(c *fiber.Ctx) error {
	var req createMintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	authority, err := identity.Parse(req.Authority)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	mint, err := h.service.CreateMint(c.UserContext(), CreateMintInput{Authority: authority, Decimals: req.Decimals})
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"mint":      mint.Address.String(),
		"authority": mint.Authority.String(),
		"decimals":  mint.Decimals,
	})
}

type createAccountRequest struct {
	Owner string `json:"owner"`
	Mint  string `json:"mint"`
}

// CreateAccount opens a holding account for a mint.
func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	owner, err := identity.Parse(req.Owner)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	mintAddr, err := identity.Parse(req.Mint)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	account, err := h.service.CreateAccount(c.UserContext(), CreateAccountInput{Owner: owner, Mint: mintAddr})
	if err != nil {
		if errors.Is(err, token.ErrUnknownMint) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"account": account.Address.String(),
		"mint":    account.Mint.String(),
		"owner":   account.Owner.String(),
	})
}

type mintToRequest struct {
	Authority string `json:"authority"`
	Mint      string `json:"mint"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
}

// MintTo issues tokens into a holding account.
func (h *Handler) MintTo(c *fiber.Ctx) error {
	var req mintToRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	in := MintToInput{Amount: req.Amount}
	var err error
	if in.Authority, err = identity.Parse(req.Authority); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if in.Mint, err = identity.Parse(req.Mint); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if in.To, err = identity.Parse(req.To); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	total, err := h.service.MintTo(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrNotMintAuthority):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, token.ErrUnknownMint), errors.Is(err, token.ErrUnknownAccount):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"balance": total})
}

type transferRequest struct {
	Caller string `json:"caller"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// Transfer moves tokens between holding accounts.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	in := TransferInput{Amount: req.Amount}
	var err error
	if in.Caller, err = identity.Parse(req.Caller); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if in.From, err = identity.Parse(req.From); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if in.To, err = identity.Parse(req.To); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Transfer(c.UserContext(), in); err != nil {
		if errors.Is(err, token.ErrTransferFailed) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(http.StatusNoContent)
}

// Package history exposes the read-only audit endpoints: swap history,
// stake history and current balances.
package history

import (
	"strconv"
	"time"

	historysvc "github.com/amirasaad/tokenx/pkg/service/history"
	"github.com/amirasaad/tokenx/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SwapResponse is one swap history entry.
type SwapResponse struct {
	SwapID     string `json:"swap_id"`
	FromToken  string `json:"from_token"`
	ToToken    string `json:"to_token"`
	FromAmount string `json:"from_amount"`
	ToAmount   string `json:"to_amount"`
	Rate       string `json:"rate"`
	Fee        string `json:"fee"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// StakeResponse is one stake history entry, any status.
type StakeResponse struct {
	StakeID           string `json:"stake_id"`
	TokenType         string `json:"token_type"`
	Amount            string `json:"amount"`
	YieldToken        string `json:"yield_token"`
	YieldRate         string `json:"yield_rate"`
	LockPeriodDays    int    `json:"lock_period_days"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	TotalYieldAccrued string `json:"total_yield_accrued"`
	Status            string `json:"status"`
}

// Routes registers the history endpoints.
//
//   - GET /api/swaps    : List the caller's swap history, newest first.
//   - GET /api/history/stakes : List the caller's stakes, any status.
//   - GET /api/balances : Current balances per token.
func Routes(app *fiber.App, svc *historysvc.Service) {
	app.Get("/api/swaps", ListSwaps(svc))
	app.Get("/api/history/stakes", ListStakes(svc))
	app.Get("/api/balances", Balances(svc))
}

// ListSwaps returns the handler for the swap history. The optional limit
// query parameter caps the page size.
func ListSwaps(svc *historysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Query("user_id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid limit", err, fiber.StatusBadRequest)
			}
		}
		swaps, err := svc.ListSwaps(c.UserContext(), userID, limit)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list swaps", err)
		}
		out := make([]SwapResponse, 0, len(swaps))
		for _, s := range swaps {
			out = append(out, SwapResponse{
				SwapID:     s.ID.String(),
				FromToken:  string(s.FromToken),
				ToToken:    string(s.ToToken),
				FromAmount: s.FromAmount.String(),
				ToAmount:   s.ToAmount.String(),
				Rate:       s.Rate.String(),
				Fee:        s.Fee.String(),
				Status:     string(s.Status),
				CreatedAt:  s.CreatedAt.Format(time.RFC3339),
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Swap history", out)
	}
}

// ListStakes returns the handler for the full stake history.
func ListStakes(svc *historysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Query("user_id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		stakes, err := svc.ListStakes(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list stakes", err)
		}
		out := make([]StakeResponse, 0, len(stakes))
		for _, s := range stakes {
			out = append(out, StakeResponse{
				StakeID:           s.ID.String(),
				TokenType:         string(s.TokenType),
				Amount:            s.Amount.String(),
				YieldToken:        string(s.YieldToken),
				YieldRate:         s.YieldRate.String(),
				LockPeriodDays:    s.LockPeriodDays,
				StartDate:         s.StartDate.Format(time.RFC3339),
				EndDate:           s.EndDate.Format(time.RFC3339),
				TotalYieldAccrued: s.TotalYieldAccrued.String(),
				Status:            string(s.Status),
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Stake history", out)
	}
}

// Balances returns the handler for current balances keyed by token.
func Balances(svc *historysvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Query("user_id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		balances, err := svc.Balances(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch balances", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balances", balances)
	}
}

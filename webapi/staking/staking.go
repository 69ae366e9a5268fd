// Package staking exposes the staking endpoints: the options menu, opening
// and withdrawing stakes, listing active positions and the privileged bulk
// yield-processing trigger.
package staking

import (
	"time"

	stakingsvc "github.com/amirasaad/tokenx/pkg/service/staking"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/amirasaad/tokenx/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperatorKeyHeader carries the key authorizing bulk yield processing.
const OperatorKeyHeader = "X-Operator-Key"

// StakeRequest is the body for opening a stake.
type StakeRequest struct {
	UserID         string `json:"user_id" validate:"required,uuid"`
	TokenType      string `json:"token_type" validate:"required,alphanum,uppercase"`
	Amount         string `json:"amount" validate:"required"`
	YieldToken     string `json:"yield_token" validate:"required,alphanum,uppercase"`
	LockPeriodDays int    `json:"lock_period_days" validate:"required,gt=0"`
}

// WithdrawRequest is the body for withdrawing a stake.
type WithdrawRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// StakeResponse is one stake record as returned to the holder.
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
	ProjectedYield    string `json:"projected_yield,omitempty"`
	Status            string `json:"status"`
}

// WithdrawResponse is the body returned after a withdrawal.
type WithdrawResponse struct {
	StakeID         string `json:"stake_id"`
	ReturnedAmount  string `json:"returned_amount"`
	YieldAmount     string `json:"yield_amount"`
	YieldToken      string `json:"yield_token"`
	EarlyWithdrawal bool   `json:"early_withdrawal"`
}

// OptionResponse is one entry in the staking options menu.
type OptionResponse struct {
	TokenType      string `json:"token_type"`
	YieldToken     string `json:"yield_token"`
	YieldRate      string `json:"yield_rate"`
	LockPeriodDays int    `json:"lock_period_days"`
	MinAmount      string `json:"min_amount"`
	MaxAmount      string `json:"max_amount"`
}

// ProcessResponse summarizes a bulk yield-processing run.
type ProcessResponse struct {
	ProcessedCount int `json:"processed_count"`
	FailedCount    int `json:"failed_count"`
}

// Routes registers the staking endpoints.
//
//   - POST /api/stakes                 : Open a stake.
//   - GET  /api/stakes                 : List the caller's active stakes.
//   - POST /api/stakes/:id/withdraw    : Withdraw a stake.
//   - GET  /api/staking/options        : List the staking options menu.
//   - POST /api/admin/yields/process   : Run bulk yield processing (operator only).
func Routes(app *fiber.App, svc *stakingsvc.Service) {
	app.Post("/api/stakes", Open(svc))
	app.Get("/api/stakes", ListActive(svc))
	app.Post("/api/stakes/:id/withdraw", Withdraw(svc))
	app.Get("/api/staking/options", Options(svc))
	app.Post("/api/admin/yields/process", ProcessYields(svc))
}

// Open returns the handler that opens a time-locked stake.
func Open(svc *stakingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[StakeRequest](c)
		if input == nil {
			return err
		}
		userID, err := uuid.Parse(input.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		tokenType, err := token.ParseSymbol(input.TokenType)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid token", err, fiber.StatusBadRequest)
		}
		yieldToken, err := token.ParseSymbol(input.YieldToken)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid yield token", err, fiber.StatusBadRequest)
		}
		amount, err := decimal.NewFromString(input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
		}
		stake, err := svc.StakeTokens(
			c.UserContext(), userID, tokenType, amount, yieldToken, input.LockPeriodDays)
		if err != nil {
			log.Errorf("Stake failed for user %s: %v", userID, err)
			return common.ProblemDetailsJSON(c, "Stake failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Stake opened", StakeResponse{
			StakeID:           stake.ID.String(),
			TokenType:         string(stake.TokenType),
			Amount:            stake.Amount.String(),
			YieldToken:        string(stake.YieldToken),
			YieldRate:         stake.YieldRate.String(),
			LockPeriodDays:    stake.LockPeriodDays,
			StartDate:         stake.StartDate.Format(time.RFC3339),
			EndDate:           stake.EndDate.Format(time.RFC3339),
			TotalYieldAccrued: stake.TotalYieldAccrued.String(),
			Status:            string(stake.Status),
		})
	}
}

// ListActive returns the handler listing the caller's active stakes with
// projected yield.
func ListActive(svc *stakingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := uuid.Parse(c.Query("user_id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		projections, err := svc.GetActiveStakes(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list stakes", err)
		}
		out := make([]StakeResponse, 0, len(projections))
		for _, p := range projections {
			out = append(out, StakeResponse{
				StakeID:           p.Stake.ID.String(),
				TokenType:         string(p.Stake.TokenType),
				Amount:            p.Stake.Amount.String(),
				YieldToken:        string(p.Stake.YieldToken),
				YieldRate:         p.Stake.YieldRate.String(),
				LockPeriodDays:    p.Stake.LockPeriodDays,
				StartDate:         p.Stake.StartDate.Format(time.RFC3339),
				EndDate:           p.Stake.EndDate.Format(time.RFC3339),
				TotalYieldAccrued: p.Stake.TotalYieldAccrued.String(),
				ProjectedYield:    p.ProjectedYield.String(),
				Status:            string(p.Stake.Status),
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Active stakes", out)
	}
}

// Withdraw returns the handler that closes a stake and returns principal plus
// yield to the holder's balances.
func Withdraw(svc *stakingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stakeID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid stake ID", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if input == nil {
			return err
		}
		userID, err := uuid.Parse(input.UserID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusBadRequest)
		}
		result, err := svc.WithdrawStake(c.UserContext(), userID, stakeID)
		if err != nil {
			log.Errorf("Withdraw failed for stake %s: %v", stakeID, err)
			return common.ProblemDetailsJSON(c, "Withdraw failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Stake withdrawn", WithdrawResponse{
			StakeID:         result.StakeID.String(),
			ReturnedAmount:  result.ReturnedAmount.String(),
			YieldAmount:     result.YieldAmount.String(),
			YieldToken:      string(result.YieldToken),
			EarlyWithdrawal: result.EarlyWithdrawal,
		})
	}
}

// Options returns the handler listing the staking options menu.
func Options(svc *stakingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		options := svc.Options()
		out := make([]OptionResponse, 0, len(options))
		for _, opt := range options {
			out = append(out, OptionResponse{
				TokenType:      string(opt.TokenType),
				YieldToken:     string(opt.YieldToken),
				YieldRate:      opt.YieldRate.String(),
				LockPeriodDays: opt.LockPeriodDays,
				MinAmount:      opt.MinAmount.String(),
				MaxAmount:      opt.MaxAmount.String(),
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Staking options", out)
	}
}

// ProcessYields returns the handler for the privileged bulk processing run.
// The operator key travels in the X-Operator-Key header.
func ProcessYields(svc *stakingsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := svc.ProcessYields(c.UserContext(), c.Get(OperatorKeyHeader))
		if err != nil {
			log.Errorf("Yield processing failed: %v", err)
			return common.ProblemDetailsJSON(c, "Yield processing failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Yields processed", ProcessResponse{
			ProcessedCount: result.ProcessedCount,
			FailedCount:    result.FailedCount,
		})
	}
}

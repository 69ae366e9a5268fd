// Package swap exposes the swap endpoints: quoting, execution and the pair
// menu with current rates.
package swap

import (
	"github.com/amirasaad/tokenx/pkg/oracle"
	swapsvc "github.com/amirasaad/tokenx/pkg/service/swap"
	"github.com/amirasaad/tokenx/pkg/token"
	"github.com/amirasaad/tokenx/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SwapRequest is the body for executing or estimating a swap.
type SwapRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	FromToken string `json:"from_token" validate:"required,alphanum,uppercase"`
	ToToken   string `json:"to_token" validate:"required,alphanum,uppercase"`
	Amount    string `json:"amount" validate:"required"`
}

// SwapResponse is the body returned after a successful swap.
type SwapResponse struct {
	SwapID     string `json:"swap_id"`
	FromToken  string `json:"from_token"`
	ToToken    string `json:"to_token"`
	FromAmount string `json:"from_amount"`
	ToAmount   string `json:"to_amount"`
	Rate       string `json:"rate"`
	Fee        string `json:"fee"`
}

// EstimateRequest is the body for quoting a swap. No account is needed; a
// quote consumes nothing.
type EstimateRequest struct {
	FromToken string `json:"from_token" validate:"required,alphanum,uppercase"`
	ToToken   string `json:"to_token" validate:"required,alphanum,uppercase"`
	Amount    string `json:"amount" validate:"required"`
}

// EstimateResponse is the body returned for a quote.
type EstimateResponse struct {
	FromToken    string `json:"from_token"`
	ToToken      string `json:"to_token"`
	InputAmount  string `json:"input_amount"`
	OutputAmount string `json:"output_amount"`
	Fee          string `json:"fee"`
	Rate         string `json:"rate"`
}

// PairResponse is one entry in the pair menu.
type PairResponse struct {
	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`
	Rate      string `json:"rate"`
	Fee       string `json:"fee"`
	MinAmount string `json:"min_amount"`
	MaxAmount string `json:"max_amount"`
	IsActive  bool   `json:"is_active"`
}

// Routes registers the swap endpoints.
//
//   - POST /api/swap          : Execute a swap.
//   - POST /api/swap/estimate : Quote a swap without executing it.
//   - GET  /api/rates         : List every pair with its current rate.
func Routes(app *fiber.App, svc *swapsvc.Service, o *oracle.Oracle) {
	app.Post("/api/swap", Execute(svc))
	app.Post("/api/swap/estimate", Estimate(o))
	app.Get("/api/rates", Rates(o))
}

// Execute returns the handler that runs one swap end to end.
func Execute(svc *swapsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SwapRequest](c)
		if input == nil {
			return err
		}
		userID, from, to, amount, err := parseSwapRequest(input)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid swap request", err, fiber.StatusBadRequest)
		}
		result, err := svc.SwapTokens(c.UserContext(), userID, from, to, amount)
		if err != nil {
			log.Errorf("Swap failed for user %s: %v", userID, err)
			return common.ProblemDetailsJSON(c, "Swap failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Swap executed", SwapResponse{
			SwapID:     result.SwapID.String(),
			FromToken:  string(result.FromToken),
			ToToken:    string(result.ToToken),
			FromAmount: result.FromAmount.String(),
			ToAmount:   result.ToAmount.String(),
			Rate:       result.Rate.String(),
			Fee:        result.Fee.String(),
		})
	}
}

// Estimate returns the handler that prices a prospective swap. Nothing is
// mutated and no limits are consumed.
func Estimate(o *oracle.Oracle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[EstimateRequest](c)
		if input == nil {
			return err
		}
		from, to, amount, err := parsePairAmount(input.FromToken, input.ToToken, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid estimate request", err, fiber.StatusBadRequest)
		}
		quote, err := o.EstimateOutput(from, to, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Estimate failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Swap estimated", EstimateResponse{
			FromToken:    string(quote.FromToken),
			ToToken:      string(quote.ToToken),
			InputAmount:  quote.InputAmount.String(),
			OutputAmount: quote.OutputAmount.String(),
			Fee:          quote.Fee.String(),
			Rate:         quote.Rate.String(),
		})
	}
}

// Rates returns the handler listing every registered pair.
func Rates(o *oracle.Oracle) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pairs := o.AllPairs()
		out := make([]PairResponse, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, PairResponse{
				FromToken: string(p.FromToken),
				ToToken:   string(p.ToToken),
				Rate:      p.Rate.String(),
				Fee:       p.Fee.String(),
				MinAmount: p.MinAmount.String(),
				MaxAmount: p.MaxAmount.String(),
				IsActive:  p.IsActive,
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Current rates", out)
	}
}

func parseSwapRequest(input *SwapRequest) (uuid.UUID, token.Symbol, token.Symbol, decimal.Decimal, error) {
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return uuid.Nil, "", "", decimal.Decimal{}, err
	}
	from, to, amount, err := parsePairAmount(input.FromToken, input.ToToken, input.Amount)
	if err != nil {
		return uuid.Nil, "", "", decimal.Decimal{}, err
	}
	return userID, from, to, amount, nil
}

func parsePairAmount(fromRaw, toRaw, amountRaw string) (token.Symbol, token.Symbol, decimal.Decimal, error) {
	from, err := token.ParseSymbol(fromRaw)
	if err != nil {
		return "", "", decimal.Decimal{}, err
	}
	to, err := token.ParseSymbol(toRaw)
	if err != nil {
		return "", "", decimal.Decimal{}, err
	}
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return "", "", decimal.Decimal{}, err
	}
	return from, to, amount, nil
}

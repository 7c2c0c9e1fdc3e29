// Package config loads and validates the exchange's configuration, using
// the teacher's env-var Load() pattern (internal/config/config.go):
// accumulate a list of missing/invalid fields and return one joined error
// rather than failing on the first problem.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"perpsim/errs"
	"perpsim/filter"
)

// ContractSpecification describes the instrument's leverage, maintenance
// margin, price/quantity filters, and fee schedule (spec §6).
type ContractSpecification struct {
	Leverage                  decimal.Decimal
	MaintenanceMarginFraction decimal.Decimal
	PriceFilter               filter.Price
	QuantityFilter            filter.Quantity
	MakerFee                  decimal.Decimal // basis-point-scaled rate, e.g. 0.0002 for 2bps
	TakerFee                  decimal.Decimal
	MarginCurrencyIsBase      bool // false = quote-margined (linear), true = base-margined (inverse)
}

// Config is the exchange's full configuration (spec §6).
type Config struct {
	StartingBalance decimal.Decimal
	MaxActiveOrders int
	ContractSpec    ContractSpecification
	OrdersPerSecond int
}

// Validate checks starting_balance > 0, a positive capacity and rate,
// leverage >= 1, a positive maintenance margin fraction, and positive
// tick and step sizes. Filter min/max bounds and multipliers are not
// checked.
func (c Config) Validate() error {
	if c.StartingBalance.LessThanOrEqual(decimal.Zero) {
		return &errs.ConfigError{Field: "starting_balance", Reason: "must be positive"}
	}
	if c.MaxActiveOrders <= 0 {
		return &errs.ConfigError{Field: "max_active_orders", Reason: "must be a positive, non-zero capacity"}
	}
	if c.OrdersPerSecond <= 0 {
		return &errs.ConfigError{Field: "order_rate_limits", Reason: "orders_per_second must be positive"}
	}
	if c.ContractSpec.Leverage.LessThan(decimal.NewFromInt(1)) {
		return &errs.ConfigError{Field: "contract_spec.leverage", Reason: "must be >= 1"}
	}
	if c.ContractSpec.MaintenanceMarginFraction.LessThanOrEqual(decimal.Zero) {
		return &errs.ConfigError{Field: "contract_spec.maintenance_margin_fraction", Reason: "must be positive"}
	}
	if c.ContractSpec.QuantityFilter.StepSize.LessThanOrEqual(decimal.Zero) {
		return &errs.ConfigError{Field: "contract_spec.quantity_filter.step_size", Reason: "must be positive"}
	}
	if c.ContractSpec.PriceFilter.TickSize.LessThanOrEqual(decimal.Zero) {
		return &errs.ConfigError{Field: "contract_spec.price_filter.tick_size", Reason: "must be positive"}
	}
	return nil
}

// Load reads a Config from environment variables, mirroring the
// teacher's accumulate-then-report missing-fields pattern.
func Load() (Config, error) {
	var c Config
	var missing []string

	startingBalance := os.Getenv("STARTING_BALANCE")
	if startingBalance == "" {
		missing = append(missing, "STARTING_BALANCE")
	} else {
		v, err := decimal.NewFromString(startingBalance)
		if err != nil {
			return c, err
		}
		c.StartingBalance = v
	}

	maxActiveOrders := os.Getenv("MAX_ACTIVE_ORDERS")
	if maxActiveOrders == "" {
		missing = append(missing, "MAX_ACTIVE_ORDERS")
	} else {
		v, err := strconv.Atoi(maxActiveOrders)
		if err != nil {
			return c, err
		}
		c.MaxActiveOrders = v
	}

	ordersPerSecond := os.Getenv("ORDERS_PER_SECOND")
	if ordersPerSecond == "" {
		missing = append(missing, "ORDERS_PER_SECOND")
	} else {
		v, err := strconv.Atoi(ordersPerSecond)
		if err != nil {
			return c, err
		}
		c.OrdersPerSecond = v
	}

	leverage := os.Getenv("LEVERAGE")
	if leverage == "" {
		missing = append(missing, "LEVERAGE")
	} else {
		v, err := decimal.NewFromString(leverage)
		if err != nil {
			return c, err
		}
		c.ContractSpec.Leverage = v
	}

	maintMargin := os.Getenv("MAINTENANCE_MARGIN_FRACTION")
	if maintMargin == "" {
		missing = append(missing, "MAINTENANCE_MARGIN_FRACTION")
	} else {
		v, err := decimal.NewFromString(maintMargin)
		if err != nil {
			return c, err
		}
		c.ContractSpec.MaintenanceMarginFraction = v
	}

	tickSize := os.Getenv("PRICE_TICK_SIZE")
	if tickSize == "" {
		missing = append(missing, "PRICE_TICK_SIZE")
	} else {
		v, err := decimal.NewFromString(tickSize)
		if err != nil {
			return c, err
		}
		c.ContractSpec.PriceFilter.TickSize = v
	}

	stepSize := os.Getenv("QTY_STEP_SIZE")
	if stepSize == "" {
		missing = append(missing, "QTY_STEP_SIZE")
	} else {
		v, err := decimal.NewFromString(stepSize)
		if err != nil {
			return c, err
		}
		c.ContractSpec.QuantityFilter.StepSize = v
	}

	makerFee := os.Getenv("MAKER_FEE")
	if makerFee == "" {
		missing = append(missing, "MAKER_FEE")
	} else {
		v, err := decimal.NewFromString(makerFee)
		if err != nil {
			return c, err
		}
		c.ContractSpec.MakerFee = v
	}

	takerFee := os.Getenv("TAKER_FEE")
	if takerFee == "" {
		missing = append(missing, "TAKER_FEE")
	} else {
		v, err := decimal.NewFromString(takerFee)
		if err != nil {
			return c, err
		}
		c.ContractSpec.TakerFee = v
	}

	c.ContractSpec.MarginCurrencyIsBase = strings.EqualFold(strings.TrimSpace(os.Getenv("INVERSE_CONTRACT")), "true")

	if len(missing) > 0 {
		return c, errors.New("config: missing required env: " + join(missing))
	}
	return c, nil
}

func join(items []string) string {
	if len(items) == 0 {
		return ""
	}
	out := items[0]
	for i := 1; i < len(items); i++ {
		out += "," + items[i]
	}
	return out
}

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"perpsim/config"
	"perpsim/currency"
	"perpsim/exchange"
	"perpsim/ingest"
	"perpsim/tracker"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	tapePath := "trades.csv"
	if len(os.Args) > 1 {
		tapePath = os.Args[1]
	}
	f, err := os.Open(tapePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", tapePath).Msg("opening trade tape")
	}
	defer f.Close()

	records, err := ingest.ReadTrades(f)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing trade tape")
	}
	if len(records) == 0 {
		log.Fatal().Msg("trade tape has no rows")
	}

	initialBid := currency.NewQuote(records[0].Trade.Price.Decimal().Sub(decimal.NewFromInt(1)))
	initialAsk := currency.NewQuote(records[0].Trade.Price.Decimal().Add(decimal.NewFromInt(1)))

	ex, err := exchange.New(cfg, initialBid, initialAsk, tracker.NoOp{})
	if err != nil {
		log.Fatal().Err(err).Msg("constructing exchange")
	}

	for _, rec := range records {
		updates, err := ex.UpdateState(rec.TsNs, rec.Trade)
		if err != nil {
			log.Warn().Err(err).Int64("ts_ns", rec.TsNs).Msg("update rejected")
			continue
		}
		for _, u := range updates {
			log.Info().
				Str("kind", u.Kind.String()).
				Str("side", u.Order.Side().String()).
				Str("remaining", u.Order.RemainingQty().String()).
				Msg("limit order fill")
		}
	}

	bal := ex.Balances()
	log.Info().
		Str("available", bal.Available.String()).
		Str("position_margin", bal.PositionMargin.String()).
		Str("order_margin", bal.OrderMargin.String()).
		Str("total_fees_paid", bal.TotalFeesPaid.String()).
		Msg("final balances")
}

// Package ingest reads trade tape files into marketupdate.Trade values.
// It is an external collaborator, not part of the core: it produces
// updates for a caller to feed into exchange.Exchange.UpdateState, and
// never calls into the core itself.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"perpsim/currency"
	"perpsim/marketupdate"
	"perpsim/order"
)

const msToNs = int64(1_000_000)

// Record pairs one parsed trade with the nanosecond timestamp it should
// be replayed at.
type Record struct {
	TsNs  int64
	Trade *marketupdate.Trade
}

// ReadTrades parses a `timestamp,price,size` CSV trade tape (millisecond
// timestamps, signed size: negative sells, positive buys) into Records in
// file order. A header row is required and skipped. Zero-quantity rows
// are rejected.
func ReadTrades(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading header: %w", err)
	}
	if len(header) != 3 {
		return nil, errors.New("ingest: expected a 3-column timestamp,price,size header")
	}

	var records []Record
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}

		tsMs, err := decimal.NewFromString(rec[0])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: invalid timestamp: %w", line, err)
		}
		price, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: invalid price: %w", line, err)
		}
		size, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: invalid size: %w", line, err)
		}
		if size.IsZero() {
			return nil, fmt.Errorf("ingest: line %d: zero-quantity trade rejected", line)
		}

		side := order.Buy
		if size.IsNegative() {
			side = order.Sell
		}

		records = append(records, Record{
			TsNs: tsMs.IntPart() * msToNs,
			Trade: &marketupdate.Trade{
				Price:         currency.NewQuote(price),
				Qty:           currency.NewBase(size.Abs()),
				AggressorSide: side,
			},
		})
	}
	return records, nil
}

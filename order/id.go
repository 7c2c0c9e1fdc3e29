package order

// ID is a monotonically increasing identifier assigned by the exchange on
// acceptance. It is unique for the life of the process.
type ID uint64

// UserID is a caller-supplied identifier for a submitted order, used for
// cancel-by-client-id lookups. It carries no exchange-side meaning.
type UserID uint64

// Counter hands out strictly increasing IDs starting at 1.
type Counter struct {
	next ID
}

func (c *Counter) Next() ID {
	c.next++
	return c.next
}

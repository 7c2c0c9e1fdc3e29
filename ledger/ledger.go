// Package ledger implements the double-entry bookkeeping model described
// in spec §3/§4.E/§9: six fixed T-accounts, transactions of
// (debit account, credit account, amount > 0), and a global invariant
// that the sum of all debits equals the sum of all credits after every
// post. There is no dynamic account creation, unlike the teacher's
// Postgres-backed ledger.Service which creates accounts lazily per
// (owner, asset, kind) -- the six accounts here are fixed at
// construction, matching the single-account, single-instrument scope.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Account identifies one of the six fixed T-accounts.
type Account int

const (
	UserWallet Account = iota
	UserOrderMargin
	UserPositionMargin
	ExchangeFee
	BrokerMargin
	Treasury

	numAccounts
)

func (a Account) String() string {
	switch a {
	case UserWallet:
		return "USER_WALLET"
	case UserOrderMargin:
		return "USER_ORDER_MARGIN"
	case UserPositionMargin:
		return "USER_POSITION_MARGIN"
	case ExchangeFee:
		return "EXCHANGE_FEE"
	case BrokerMargin:
		return "BROKER_MARGIN"
	case Treasury:
		return "TREASURY"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrNonPositiveAmount = errors.New("ledger: transaction amount must be positive")
	ErrSameAccount       = errors.New("ledger: debit and credit accounts must differ")
	ErrUnbalanced        = errors.New("ledger: total debits and credits diverged")
)

// tAccount tracks cumulative debits and credits posted to one account.
// Net balance is debits minus credits, matching the original source's
// convention (USER_WALLET is debited to increase, TREASURY credited to
// absorb the corresponding liability on seed deposit).
type tAccount struct {
	debitsPosted  decimal.Decimal
	creditsPosted decimal.Decimal
}

func (t *tAccount) postDebit(amount decimal.Decimal) { t.debitsPosted = t.debitsPosted.Add(amount) }
func (t *tAccount) postCredit(amount decimal.Decimal) { t.creditsPosted = t.creditsPosted.Add(amount) }
func (t *tAccount) netBalance() decimal.Decimal { return t.debitsPosted.Sub(t.creditsPosted) }

// Ledger owns the six T-accounts for one account/instrument pair.
type Ledger struct {
	accounts [numAccounts]tAccount
}

// New constructs a Ledger seeded with startingBalance: debits USER_WALLET
// and credits TREASURY, mirroring how the account's initial deposit is
// funded from outside the simulated exchange.
func New(startingBalance decimal.Decimal) (*Ledger, error) {
	if startingBalance.IsNegative() {
		return nil, errors.New("ledger: starting balance must not be negative")
	}
	l := &Ledger{}
	if startingBalance.IsPositive() {
		if err := l.post(UserWallet, Treasury, startingBalance); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Transfer posts amount as a debit to `debit` and a credit to `credit`,
// then asserts the global Σdebits = Σcredits invariant.
func (l *Ledger) Transfer(debit, credit Account, amount decimal.Decimal) error {
	return l.post(debit, credit, amount)
}

func (l *Ledger) post(debit, credit Account, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if debit == credit {
		return ErrSameAccount
	}
	l.accounts[debit].postDebit(amount)
	l.accounts[credit].postCredit(amount)
	if err := l.checkBalanced(); err != nil {
		return err
	}
	return nil
}

func (l *Ledger) checkBalanced() error {
	var debits, credits decimal.Decimal
	for _, a := range l.accounts {
		debits = debits.Add(a.debitsPosted)
		credits = credits.Add(a.creditsPosted)
	}
	if !debits.Equal(credits) {
		return ErrUnbalanced
	}
	return nil
}

// Balance returns the net balance (debits - credits) of an account.
func (l *Ledger) Balance(a Account) decimal.Decimal {
	return l.accounts[a].netBalance()
}

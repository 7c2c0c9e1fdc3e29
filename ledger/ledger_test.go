package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewSeedsWalletFromTreasury(t *testing.T) {
	l, err := New(decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !l.Balance(UserWallet).Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("UserWallet balance = %s, want 1000", l.Balance(UserWallet))
	}
	if !l.Balance(Treasury).Equal(decimal.NewFromInt(-1000)) {
		t.Fatalf("Treasury balance = %s, want -1000", l.Balance(Treasury))
	}
}

func TestTransferKeepsBooksBalanced(t *testing.T) {
	l, err := New(decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := l.Transfer(UserWallet, UserOrderMargin, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if !l.Balance(UserWallet).Equal(decimal.NewFromInt(900)) {
		t.Fatalf("UserWallet balance = %s, want 900", l.Balance(UserWallet))
	}
	if !l.Balance(UserOrderMargin).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("UserOrderMargin balance = %s, want 100", l.Balance(UserOrderMargin))
	}

	var debits, credits decimal.Decimal
	for a := UserWallet; a < numAccounts; a++ {
		debits = debits.Add(l.accounts[a].debitsPosted)
		credits = credits.Add(l.accounts[a].creditsPosted)
	}
	if !debits.Equal(credits) {
		t.Fatalf("debits %s != credits %s", debits, credits)
	}
}

func TestTransferRejectsNonPositiveOrSameAccount(t *testing.T) {
	l, err := New(decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := l.Transfer(UserWallet, UserOrderMargin, decimal.Zero); err != ErrNonPositiveAmount {
		t.Fatalf("Transfer() zero amount error = %v, want ErrNonPositiveAmount", err)
	}
	if err := l.Transfer(UserWallet, UserWallet, decimal.NewFromInt(1)); err != ErrSameAccount {
		t.Fatalf("Transfer() same account error = %v, want ErrSameAccount", err)
	}
}

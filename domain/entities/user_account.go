package entities

import "github.com/holiman/uint256"

// UserAccount is a participant's balances plus their stake entries, oldest first.
type UserAccount struct {
	Address              string
	AmountDelegated      uint256.Int
	AvailableForWithdraw uint256.Int
	TotalWon             uint256.Int
	Entries              []SlotRef
}

// NewUserAccount returns an empty account.
func NewUserAccount(address string) *UserAccount {
	return &UserAccount{Address: address}
}

// Credit adds a prize to the account.
func (a *UserAccount) Credit(prize uint256.Int) error {
	available, err := Add(a.AvailableForWithdraw, prize)
	if err != nil {
		return err
	}
	won, err := Add(a.TotalWon, prize)
	if err != nil {
		return err
	}
	a.AvailableForWithdraw = available
	a.TotalWon = won
	return nil
}

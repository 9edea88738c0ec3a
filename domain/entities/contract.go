package entities

// Contract identifies an external contract by address and code hash.
type Contract struct {
	Address  string `json:"address"`
	CodeHash string `json:"code_hash"`
}

// IsZero reports whether the contract identity is unset.
func (c Contract) IsZero() bool {
	return c.Address == ""
}

package domain

// Chain is immutable reference data for a supported blockchain.
type Chain struct {
	ID   int64
	Name string
}

// Asset is immutable reference data, identified by (chain, address).
type Asset struct {
	ChainID int64
	Address string
	Symbol  string
}

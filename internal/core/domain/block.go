package domain

// Block represents a blockchain block together with the transactions the host evaluates.
type Block struct {
	ChainID      ChainID
	Number       uint64
	Hash         string
	ParentHash   string
	Timestamp    uint64
	Transactions []TransactionEvent
}

package detector

import (
	"math/big"
)

const (
	// AlertID identifies dormancy alerts for downstream routing and dedup.
	AlertID = "FORTA-1"
	// AlertName is the human label of a dormancy alert.
	AlertName = "High volume after long inactivity"

	// DefaultInactiveSeconds is 366 days.
	DefaultInactiveSeconds int64 = 31_622_400
	DefaultDecimals              = 18
	DefaultSymbol                = "ETH"

	secondsPerDay = 86_400
)

// Config holds the detector thresholds.
type Config struct {
	// HighVolume is the minimum value, in smallest units, that is worth a history lookup.
	HighVolume *big.Int
	// InactiveSeconds is the minimum gap since the previous transaction.
	InactiveSeconds int64
	// Decimals and Symbol are used to render the value in whole coins.
	Decimals int32
	Symbol   string
}

// DefaultHighVolume returns 100 coins at 18 decimals.
func DefaultHighVolume() *big.Int {
	return new(big.Int).Mul(big.NewInt(100), new(big.Int).Exp(big.NewInt(10), big.NewInt(DefaultDecimals), nil))
}

// DefaultConfig returns the thresholds for 100 ETH after 366 days.
func DefaultConfig() Config {
	return Config{
		HighVolume:      DefaultHighVolume(),
		InactiveSeconds: DefaultInactiveSeconds,
		Decimals:        DefaultDecimals,
		Symbol:          DefaultSymbol,
	}
}

func (c Config) withDefaults() Config {
	if c.HighVolume == nil {
		c.HighVolume = DefaultHighVolume()
	} else {
		c.HighVolume = new(big.Int).Set(c.HighVolume)
	}
	if c.InactiveSeconds <= 0 {
		c.InactiveSeconds = DefaultInactiveSeconds
	}
	if c.Decimals <= 0 {
		c.Decimals = DefaultDecimals
	}
	if c.Symbol == "" {
		c.Symbol = DefaultSymbol
	}
	return c
}

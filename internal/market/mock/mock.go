// Package mock lists stand-in assets for offline use.
package mock

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// DefaultCount is the number of records produced per fetch.
const DefaultCount = 50

type asset struct {
	id, name, symbol string
}

var assets = []asset{
	{"bitcoin", "Bitcoin", "btc"},
	{"ethereum", "Ethereum", "eth"},
	{"tether", "Tether", "usdt"},
	{"binancecoin", "BNB", "bnb"},
	{"solana", "Solana", "sol"},
	{"usd-coin", "USDC", "usdc"},
	{"ripple", "XRP", "xrp"},
	{"dogecoin", "Dogecoin", "doge"},
	{"cardano", "Cardano", "ada"},
	{"tron", "TRON", "trx"},
	{"avalanche-2", "Avalanche", "avax"},
	{"chainlink", "Chainlink", "link"},
	{"the-open-network", "Toncoin", "ton"},
	{"shiba-inu", "Shiba Inu", "shib"},
	{"polkadot", "Polkadot", "dot"},
	{"litecoin", "Litecoin", "ltc"},
	{"uniswap", "Uniswap", "uni"},
	{"near", "NEAR Protocol", "near"},
	{"aptos", "Aptos", "apt"},
	{"cosmos", "Cosmos Hub", "atom"},
	{"stellar", "Stellar", "xlm"},
	{"arbitrum", "Arbitrum", "arb"},
	{"optimism", "Optimism", "op"},
	{"pepe", "Pepe", "pepe"},
	{"render-token", "Render", "rndr"},
}

// Generator is a market.Provider listing a fixed asset table. Records carry
// identity and rank only; the random strategy fills in every number.
type Generator struct {
	count int
}

// NewGenerator creates a generator producing count records per fetch.
func NewGenerator(count int) *Generator {
	if count <= 0 {
		count = DefaultCount
	}
	return &Generator{count: count}
}

// Name implements the optional provider name.
func (g *Generator) Name() string { return "mock" }

// Fetch implements market.Provider. Assets repeat with a numeric suffix once
// the table is exhausted, so ids stay unique.
func (g *Generator) Fetch(ctx context.Context) ([]types.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]types.RawRecord, 0, g.count)
	for i := 0; i < g.count; i++ {
		a := assets[i%len(assets)]
		id, name := a.id, a.name
		if round := i / len(assets); round > 0 {
			id = fmt.Sprintf("%s-%d", a.id, round+1)
			name = fmt.Sprintf("%s %d", a.name, round+1)
		}

		records = append(records, types.RawRecord{
			ID:            id,
			Name:          name,
			Symbol:        a.symbol,
			MarketCapRank: types.Int(i + 1),
		})
	}
	return records, nil
}

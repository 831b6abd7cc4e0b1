// internal/swap/pair.go
package swap

import "github.com/rovshanmuradov/tokenboard/internal/types"

// Lookup resolves a token id against the current snapshot.
type Lookup func(id string) (types.Token, bool)

// Pair is the current swap selection: which token is sold, which is bought
// and the amount as typed by the user. The quote is always recomputed from
// the pair and the latest snapshot, never cached.
type Pair struct {
	FromID string `json:"from"`
	ToID   string `json:"to"`
	Amount string `json:"amount"`
}

// Reverse exchanges the from and to sides.
func (p Pair) Reverse() Pair {
	return Pair{FromID: p.ToID, ToID: p.FromID, Amount: p.Amount}
}

// Empty reports whether either side is unselected.
func (p Pair) Empty() bool {
	return p.FromID == "" || p.ToID == ""
}

// Quote resolves both sides through lookup and quotes them.
func (p Pair) Quote(lookup Lookup) *types.SwapQuote {
	if p.Empty() || lookup == nil {
		return nil
	}
	from, ok := lookup(p.FromID)
	if !ok {
		return nil
	}
	to, ok := lookup(p.ToID)
	if !ok {
		return nil
	}
	return Calculate(&from, &to, p.Amount)
}

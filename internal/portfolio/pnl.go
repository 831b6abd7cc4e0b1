// internal/portfolio/pnl.go
package portfolio

// PnLResult holds profit-and-loss data for one holding or a whole portfolio.
type PnLResult struct {
	InitialInvestment float64 `json:"initial_investment"` // amount x purchase price
	CurrentValue      float64 `json:"current_value"`      // amount x current price
	NetPnL            float64 `json:"net_pnl"`
	PnLPercentage     float64 `json:"pnl_percentage"` // NetPnL / InitialInvestment x 100
}

// CalculatePnL values amount units bought at purchasePrice at currentPrice.
func CalculatePnL(amount, purchasePrice, currentPrice float64) PnLResult {
	res := PnLResult{
		InitialInvestment: amount * purchasePrice,
		CurrentValue:      amount * currentPrice,
	}
	res.NetPnL = res.CurrentValue - res.InitialInvestment
	res.PnLPercentage = percentage(res.NetPnL, res.InitialInvestment)
	return res
}

// add accumulates o into r and recomputes the percentage.
func (r *PnLResult) add(o PnLResult) {
	r.InitialInvestment += o.InitialInvestment
	r.CurrentValue += o.CurrentValue
	r.NetPnL = r.CurrentValue - r.InitialInvestment
	r.PnLPercentage = percentage(r.NetPnL, r.InitialInvestment)
}

func percentage(net, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return net / base * 100
}

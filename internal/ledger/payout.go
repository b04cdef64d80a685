package ledger

import (
	"github.com/shopspring/decimal"
)

const amountPlaces = 8

var hundred = decimal.NewFromInt(100)

// Fees configures the community cut and where leftovers go. The deployer's cut is per game.
type Fees struct {
	CommunityPercent decimal.Decimal
	Treasury         string
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Truncate(amountPlaces)
}

// Payouts splits the full pool. Fees come off the top, each winner receives its percentage
// of what remains, and the treasury takes the rest so the transfers always sum to the pool.
func Payouts(g Game, fees Fees) []Transfer {
	pool := g.SquarePrice.Mul(decimal.NewFromInt(GridSize))
	deployerFee := percentOf(pool, g.DeployerFeePercent)
	communityFee := percentOf(pool, fees.CommunityPercent)
	postFee := pool.Sub(deployerFee).Sub(communityFee)

	var out []Transfer
	paid := decimal.Zero
	add := func(to string, amount decimal.Decimal, reason string) {
		if amount.IsPositive() {
			out = append(out, Transfer{GameID: g.ID, Recipient: to, Amount: amount, Reason: reason})
			paid = paid.Add(amount)
		}
	}

	for i, idx := range g.WinningSquares {
		add(g.Owners[idx], percentOf(postFee, decimal.NewFromInt(int64(g.WinnerPercentages[i]))), ReasonPrize)
	}
	add(g.Deployer, deployerFee, ReasonDeployerFee)
	add(fees.Treasury, communityFee, ReasonCommunityFee)
	add(fees.Treasury, pool.Sub(paid), ReasonRemainder)
	return out
}

// Refunds returns one transfer per holder for the squares they bought, ordered by lowest square.
func Refunds(g Game) []Transfer {
	var (
		order []string
		count = make(map[string]int64)
	)
	for _, owner := range g.Owners {
		if owner == "" {
			continue
		}
		if _, ok := count[owner]; !ok {
			order = append(order, owner)
		}
		count[owner]++
	}

	out := make([]Transfer, 0, len(order))
	for _, owner := range order {
		out = append(out, Transfer{
			GameID:    g.ID,
			Recipient: owner,
			Amount:    g.SquarePrice.Mul(decimal.NewFromInt(count[owner])),
			Reason:    ReasonRefund,
		})
	}
	return out
}

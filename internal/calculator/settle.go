package calculator

import (
	"sort"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

// Position is a user's net balance as seen by the settlement planner.
type Position struct {
	UserID string
	Amount money.Amount // positive = is owed, negative = owes
}

// Transfer is one suggested payment.
type Transfer struct {
	FromID string // debtor
	ToID   string // creditor
	Amount money.Amount
}

// Settlement is a Transfer with display names attached.
type Settlement struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Amount   money.Amount
}

// Positions extracts planner input from balance rows.
func Positions(balances []MemberBalance) []Position {
	out := make([]Position, 0, len(balances))
	for _, b := range balances {
		out = append(out, Position{UserID: b.UserID, Amount: b.Balance})
	}
	return out
}

// PlanSettlements suggests transfers that bring every position back to zero.
//
// Algorithm:
// - Debtors are positions below -money.Epsilon, creditors above +money.Epsilon
// - Both lists are sorted by magnitude, largest first; ties keep input order
// - Greedy matching: the current debtor pays the current creditor the smaller
//   of the two outstanding amounts, and whichever side is settled moves on
//
// This yields at most debtors+creditors-1 transfers. It is not guaranteed to
// be the smallest possible set. When positions do not sum to zero the excess
// on one side is left unmatched.
func PlanSettlements(positions []Position) []Transfer {
	type side struct {
		id     string
		amount money.Amount // outstanding, always positive
	}
	var debtors, creditors []side
	for _, p := range positions {
		switch {
		case p.Amount < -money.Epsilon:
			debtors = append(debtors, side{id: p.UserID, amount: -p.Amount})
		case p.Amount > money.Epsilon:
			creditors = append(creditors, side{id: p.UserID, amount: p.Amount})
		}
	}
	sort.SliceStable(debtors, func(a, b int) bool { return debtors[a].amount > debtors[b].amount })
	sort.SliceStable(creditors, func(a, b int) bool { return creditors[a].amount > creditors[b].amount })

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := money.Min(d.amount, c.amount)
		if amount > money.Epsilon {
			transfers = append(transfers, Transfer{FromID: d.id, ToID: c.id, Amount: amount})
		}
		d.amount -= amount
		c.amount -= amount

		if d.amount.IsZero(money.Epsilon) {
			i++
		}
		if c.amount.IsZero(money.Epsilon) {
			j++
		}
	}
	return transfers
}

// NameTransfers resolves user ids to member names. Ids that are not members
// are shown as UnknownName.
func NameTransfers(transfers []Transfer, members []models.Member) []Settlement {
	names := models.MemberNames(members)
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return UnknownName
	}
	out := make([]Settlement, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, Settlement{
			FromID:   t.FromID,
			FromName: name(t.FromID),
			ToID:     t.ToID,
			ToName:   name(t.ToID),
			Amount:   t.Amount,
		})
	}
	return out
}

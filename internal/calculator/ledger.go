package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

// Summary holds the group-wide aggregates shown next to the balances.
type Summary struct {
	MealRate   decimal.Decimal
	TotalMeals decimal.Decimal
	TotalBazar money.Amount
	TotalFixed money.Amount
	TotalMisc  money.Amount
	TotalCost  money.Amount
	TotalFunds money.Amount

	// ManagerHolding is what the manager should still have in hand:
	// funds collected minus all expenses recorded.
	ManagerHolding money.Amount

	Unattributed money.Amount
}

// Ledger is the all-time view of a group.
type Ledger struct {
	GroupID     string
	GroupType   models.GroupType
	ManagerID   string
	Balances    []MemberBalance
	Settlements []Settlement
	Summary     Summary
}

// UserMeals is one user's meal records and total units for a period.
type UserMeals struct {
	UserID string
	Name   string
	Units  decimal.Decimal
	Meals  []models.Meal
}

// MonthStats are the "this month" figures of the dashboard.
type MonthStats struct {
	Month       models.Month
	TotalBazar  money.Amount
	TotalCost   money.Amount
	TotalMeals  decimal.Decimal
	MealRate    decimal.Decimal
	MemberMeals []UserMeals

	// PerMemberCost is the equal share of TotalCost. When the cost does not
	// divide evenly this is the smaller share; the first member pays the rest.
	PerMemberCost money.Amount
}

// Archive is the closed-book view of one calendar month.
type Archive struct {
	Month        models.Month
	GroupID      string
	GroupType    models.GroupType
	Summary      Summary
	Balances     []MemberBalance
	Settlements  []Settlement
	PerUserMeals []UserMeals
	Funds        []models.Fund
	Expenses     []models.Expense
}

// ComputeLedger derives balances and settlements over every entry in s.
func ComputeLedger(s models.Snapshot, opts Options) Ledger {
	sheet, settlements := compute(s, opts)
	return Ledger{
		GroupID:     s.Group.ID,
		GroupType:   s.Group.Type.OrDefault(),
		ManagerID:   s.Group.ManagerID,
		Balances:    sheet.Balances,
		Settlements: settlements,
		Summary:     summarize(sheet),
	}
}

// ComputeArchive restricts s to month and derives the same figures as
// ComputeLedger for it. A month without entries yields zero aggregates and no
// settlements.
func ComputeArchive(s models.Snapshot, month models.Month, opts Options) Archive {
	scoped := InMonth(month).Apply(s)
	sheet, settlements := compute(scoped, opts)
	return Archive{
		Month:        month,
		GroupID:      s.Group.ID,
		GroupType:    s.Group.Type.OrDefault(),
		Summary:      summarize(sheet),
		Balances:     sheet.Balances,
		Settlements:  settlements,
		PerUserMeals: groupMeals(s.Members, scoped.Meals),
		Funds:        scoped.Funds,
		Expenses:     scoped.Expenses,
	}
}

// ComputeMonthStats aggregates the entries of month. Unlike ComputeArchive it
// does not produce balances.
func ComputeMonthStats(s models.Snapshot, month models.Month) MonthStats {
	scoped := InMonth(month).Apply(s)
	stats := MonthStats{
		Month:       month,
		TotalBazar:  TotalBazar(scoped.Expenses),
		TotalMeals:  TotalMealUnits(scoped.Meals),
		MemberMeals: groupMeals(s.Members, scoped.Meals),
	}
	for _, e := range scoped.Expenses {
		stats.TotalCost += e.Amount
	}
	stats.MealRate = MealRate(stats.TotalBazar, stats.TotalMeals)
	if n := len(s.Members); n > 0 {
		stats.PerMemberCost = stats.TotalCost.Split(n)[n-1]
	}
	return stats
}

func compute(s models.Snapshot, opts Options) (BalanceSheet, []Settlement) {
	sheet := CalculateBalances(BalanceInput{
		GroupType: s.Group.Type,
		ManagerID: s.Group.ManagerID,
		Members:   s.Members,
		Expenses:  s.Expenses,
		Funds:     s.Funds,
		Meals:     s.Meals,
		Options:   opts,
	})
	transfers := PlanSettlements(Positions(sheet.Balances))
	return sheet, NameTransfers(transfers, s.Members)
}

func summarize(sheet BalanceSheet) Summary {
	return Summary{
		MealRate:       sheet.MealRate,
		TotalMeals:     sheet.TotalMealUnits,
		TotalBazar:     sheet.TotalBazar,
		TotalFixed:     sheet.TotalFixed,
		TotalMisc:      sheet.TotalMisc,
		TotalCost:      sheet.TotalCost,
		TotalFunds:     sheet.TotalFunds,
		ManagerHolding: sheet.TotalFunds - sheet.TotalCost,
		Unattributed:   sheet.Unattributed,
	}
}

// groupMeals buckets meals per user: members first in their order, then
// unknown users in order of first appearance.
func groupMeals(members []models.Member, meals []models.Meal) []UserMeals {
	var out []UserMeals
	index := make(map[string]int, len(members))
	for _, m := range members {
		if _, dup := index[m.UserID]; dup {
			continue
		}
		index[m.UserID] = len(out)
		out = append(out, UserMeals{UserID: m.UserID, Name: m.Name, Units: decimal.Zero})
	}
	for _, meal := range meals {
		i, ok := index[meal.UserID]
		if !ok {
			i = len(out)
			index[meal.UserID] = i
			out = append(out, UserMeals{UserID: meal.UserID, Name: UnknownName, Units: decimal.Zero})
		}
		out[i].Units = out[i].Units.Add(meal.Units())
		out[i].Meals = append(out[i].Meals, meal)
	}
	return out
}

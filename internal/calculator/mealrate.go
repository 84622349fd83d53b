package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

// MealRatePlaces is the number of decimal places of a displayed meal rate.
const MealRatePlaces = 2

// TotalBazar sums the expenses whose category starts with "Bazar".
func TotalBazar(expenses []models.Expense) money.Amount {
	var total money.Amount
	for _, e := range expenses {
		if e.Kind() == models.CostBazar {
			total += e.Amount
		}
	}
	return total
}

// TotalMealUnits sums breakfast, lunch, dinner and guest meals over all records.
func TotalMealUnits(meals []models.Meal) decimal.Decimal {
	total := decimal.Zero
	for _, m := range meals {
		total = total.Add(m.Units())
	}
	return total
}

// MealRate is the group-wide cost of one meal unit: totalBazar / totalUnits,
// rounded half-to-even to MealRatePlaces. It is zero when no meals were eaten.
//
// The rate is for display. Charges are computed by allocating totalBazar over
// meal units (see CalculateBalances) so they add up to totalBazar exactly.
// The rounded rate times a member's units therefore need not equal their meal
// cost: 1000 over 7 units gives a rate of 142.86, yet 4 units cost 571.42, not
// 571.44.
func MealRate(totalBazar money.Amount, totalUnits decimal.Decimal) decimal.Decimal {
	if totalUnits.Sign() <= 0 {
		return decimal.Zero
	}
	return totalBazar.Decimal().DivRound(totalUnits, MealRatePlaces+2).RoundBank(MealRatePlaces)
}

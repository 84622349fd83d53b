package calculator

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

var (
	day1 = models.NewDate(2025, time.February, 1)
	day2 = models.NewDate(2025, time.February, 14)
)

func member(id, name string) models.Member {
	return models.Member{UserID: id, Name: name, Title: models.TitleMember}
}

func expense(user, amount, category string, date models.Date) models.Expense {
	return models.Expense{UserID: user, Amount: money.MustParse(amount), Category: category, Date: date}
}

func fund(user, amount string, date models.Date) models.Fund {
	return models.Fund{UserID: user, Amount: money.MustParse(amount), Date: date}
}

// meal logs units as lunch-only records; fractional units are allowed.
func meal(user, units string, date models.Date) models.Meal {
	return models.Meal{
		UserID:         user,
		Date:           date,
		Breakfast:      decimal.Zero,
		Lunch:          decimal.RequireFromString(units),
		Dinner:         decimal.Zero,
		GuestMealCount: decimal.Zero,
	}
}

func assertBalance(t *testing.T, sheet BalanceSheet, userID, want string) {
	t.Helper()
	b, ok := sheet.Balance(userID)
	if !ok {
		t.Fatalf("no balance row for %s", userID)
	}
	if b.Balance != money.MustParse(want) {
		t.Errorf("balance(%s) = %s, want %s", userID, b.Balance, want)
	}
}

func sumBalances(sheet BalanceSheet) money.Amount {
	var total money.Amount
	for _, b := range sheet.Balances {
		total += b.Balance
	}
	return total
}

func TestCalculateBalances(t *testing.T) {
	tests := []struct {
		name         string
		input        BalanceInput
		want         map[string]string
		wantRate     string
		unattributed string
	}{
		{
			name: "smart meal groceries charged by meals",
			input: BalanceInput{
				GroupType: models.GroupTypeSmartMeal,
				Members:   []models.Member{member("a", "A"), member("b", "B")},
				Expenses:  []models.Expense{expense("a", "1000", "Bazar (Grocery)", day1)},
				Meals:     []models.Meal{meal("a", "2", day1), meal("b", "2", day1)},
			},
			want:         map[string]string{"a": "500", "b": "-500"},
			wantRate:     "250",
			unattributed: "0",
		},
		{
			name: "monthly average splits every expense",
			input: BalanceInput{
				GroupType: models.GroupTypeMonthlyAvg,
				Members:   []models.Member{member("a", "A"), member("b", "B")},
				Expenses:  []models.Expense{expense("a", "600", "Internet", day1)},
				Meals:     []models.Meal{meal("a", "5", day1)},
			},
			want:         map[string]string{"a": "300", "b": "-300"},
			unattributed: "0",
		},
		{
			name: "fund deposit moves money to the manager",
			input: BalanceInput{
				GroupType: models.GroupTypeSmartMeal,
				ManagerID: "m",
				Members:   []models.Member{member("m", "M"), member("a", "A")},
				Funds:     []models.Fund{fund("a", "200", day1)},
			},
			want:         map[string]string{"m": "-200", "a": "200"},
			unattributed: "0",
		},
		{
			name: "rent and utilities split equally",
			input: BalanceInput{
				GroupType: models.GroupTypeSmartMeal,
				Members:   []models.Member{member("a", "A"), member("b", "B"), member("c", "C")},
				Expenses: []models.Expense{
					expense("a", "90", models.CategoryRent, day1),
					expense("b", "10", models.CategoryUtilities, day2),
				},
			},
			// 100.00 / 3 = 33.34 + 33.33 + 33.33
			want:         map[string]string{"a": "56.66", "b": "-23.33", "c": "-33.33"},
			unattributed: "0",
		},
		{
			name: "miscellaneous cost left unallocated by default",
			input: BalanceInput{
				GroupType: models.GroupTypeSmartMeal,
				Members:   []models.Member{member("a", "A"), member("b", "B")},
				Expenses:  []models.Expense{expense("a", "80", "Others", day1)},
			},
			want:         map[string]string{"a": "80", "b": "0"},
			unattributed: "80",
		},
		{
			name: "miscellaneous cost split when enabled",
			input: BalanceInput{
				GroupType: models.GroupTypeSmartMeal,
				Members:   []models.Member{member("a", "A"), member("b", "B")},
				Expenses:  []models.Expense{expense("a", "80", "Others", day1)},
				Options:   Options{SplitMiscellaneous: true},
			},
			want:         map[string]string{"a": "40", "b": "-40"},
			unattributed: "0",
		},
		{
			name: "bazar without meals is not charged",
			input: BalanceInput{
				GroupType: models.GroupTypeSmartMeal,
				Members:   []models.Member{member("a", "A"), member("b", "B")},
				Expenses:  []models.Expense{expense("b", "500", "Bazar", day1)},
			},
			want:         map[string]string{"a": "0", "b": "500"},
			wantRate:     "0",
			unattributed: "500",
		},
		{
			name: "fund without manager is only credited",
			input: BalanceInput{
				GroupType: models.GroupTypeSmartMeal,
				Members:   []models.Member{member("a", "A")},
				Funds:     []models.Fund{fund("a", "50", day1)},
			},
			want:         map[string]string{"a": "50"},
			unattributed: "50",
		},
		{
			name: "empty group type behaves as smart meal",
			input: BalanceInput{
				Members:  []models.Member{member("a", "A"), member("b", "B")},
				Expenses: []models.Expense{expense("a", "30", "Bazar (Meat/Fish)", day1)},
				Meals:    []models.Meal{meal("b", "1", day1)},
			},
			want:         map[string]string{"a": "30", "b": "-30"},
			wantRate:     "30",
			unattributed: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := CalculateBalances(tt.input)
			for id, want := range tt.want {
				assertBalance(t, sheet, id, want)
			}
			if tt.wantRate != "" && !sheet.MealRate.Equal(decimal.RequireFromString(tt.wantRate)) {
				t.Errorf("MealRate = %s, want %s", sheet.MealRate, tt.wantRate)
			}
			if sheet.Unattributed != money.MustParse(tt.unattributed) {
				t.Errorf("Unattributed = %s, want %s", sheet.Unattributed, tt.unattributed)
			}
			if got := sumBalances(sheet); got != sheet.Unattributed {
				t.Errorf("sum of balances %s != Unattributed %s", got, sheet.Unattributed)
			}
		})
	}
}

func TestCalculateBalancesZeroSum(t *testing.T) {
	input := BalanceInput{
		GroupType: models.GroupTypeSmartMeal,
		ManagerID: "m",
		Members: []models.Member{
			member("m", "Manager"), member("a", "A"), member("b", "B"), member("c", "C"),
		},
		Expenses: []models.Expense{
			expense("m", "1234.57", "Bazar (Grocery)", day1),
			expense("a", "333.33", "Bazar (Meat/Fish)", day2),
			expense("m", "7000", models.CategoryRent, day1),
			expense("b", "1001", models.CategoryUtilities, day2),
			expense("c", "99.99", "Internet", day2),
		},
		Funds: []models.Fund{
			fund("a", "2500", day1),
			fund("b", "1000", day1),
			fund("c", "3000", day2),
		},
		Meals: []models.Meal{
			meal("m", "2.5", day1), meal("a", "3", day1), meal("b", "1", day1),
			meal("c", "0.5", day2), meal("a", "3", day2),
		},
		Options: Options{SplitMiscellaneous: true},
	}

	sheet := CalculateBalances(input)
	if sheet.Unattributed != 0 {
		t.Errorf("Unattributed = %s, want 0", sheet.Unattributed)
	}
	if got := sumBalances(sheet); !got.IsZero(money.Epsilon) {
		t.Errorf("sum of balances = %s, want 0", got)
	}

	var mealCost money.Amount
	for _, b := range sheet.Balances {
		mealCost += b.MealCost
	}
	if mealCost != sheet.TotalBazar {
		t.Errorf("allocated meal cost %s != total bazar %s", mealCost, sheet.TotalBazar)
	}
	if !sheet.TotalMealUnits.Equal(decimal.NewFromInt(10)) {
		t.Errorf("TotalMealUnits = %s, want 10", sheet.TotalMealUnits)
	}
}

func TestCalculateBalancesMealRemainder(t *testing.T) {
	sheet := CalculateBalances(BalanceInput{
		Members:  []models.Member{member("a", "A"), member("b", "B"), member("c", "C")},
		Expenses: []models.Expense{expense("c", "100", "Bazar", day1)},
		Meals:    []models.Meal{meal("a", "1", day1), meal("b", "1", day1), meal("c", "1", day1)},
	})

	wantCost := map[string]string{"a": "33.34", "b": "33.33", "c": "33.33"}
	for id, want := range wantCost {
		b, _ := sheet.Balance(id)
		if b.MealCost != money.MustParse(want) {
			t.Errorf("MealCost(%s) = %s, want %s", id, b.MealCost, want)
		}
	}
	if !sheet.MealRate.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("MealRate = %s, want 33.33", sheet.MealRate)
	}
}

func TestCalculateBalancesUnknownUser(t *testing.T) {
	sheet := CalculateBalances(BalanceInput{
		GroupType: models.GroupTypeMonthlyAvg,
		Members:   []models.Member{member("a", "A"), member("b", "B")},
		Expenses: []models.Expense{
			expense("ghost", "100", "Bazar", day1),
			expense("a", "50", "Bazar", day1),
		},
	})

	if len(sheet.Balances) != 3 {
		t.Fatalf("got %d rows, want 3", len(sheet.Balances))
	}
	order := []string{"a", "b", "ghost"}
	for i, id := range order {
		if sheet.Balances[i].UserID != id {
			t.Errorf("row %d = %s, want %s", i, sheet.Balances[i].UserID, id)
		}
	}
	ghost := sheet.Balances[2]
	if ghost.Name != UnknownName || ghost.IsMember {
		t.Errorf("ghost row = %+v, want an unknown non-member", ghost)
	}
	// 150 split between the two members only.
	assertBalance(t, sheet, "a", "-25")
	assertBalance(t, sheet, "b", "-75")
	assertBalance(t, sheet, "ghost", "100")
}

func TestCalculateBalancesDeterministic(t *testing.T) {
	input := BalanceInput{
		GroupType: models.GroupTypeSmartMeal,
		ManagerID: "b",
		Members:   []models.Member{member("a", "A"), member("b", "B"), member("c", "C")},
		Expenses: []models.Expense{
			expense("x", "10", "Bazar", day1),
			expense("a", "77.77", models.CategoryRent, day1),
		},
		Funds: []models.Fund{fund("y", "20", day1)},
		Meals: []models.Meal{meal("z", "1", day1), meal("c", "2", day2)},
	}
	first := CalculateBalances(input)
	for i := 0; i < 10; i++ {
		if got := CalculateBalances(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs:\n got %+v\nwant %+v", i, got, first)
		}
	}
	var ids []string
	for _, b := range first.Balances {
		ids = append(ids, b.UserID)
	}
	if want := []string{"a", "b", "c", "x", "y", "z"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("row order = %v, want %v", ids, want)
	}
}

func TestMealRate(t *testing.T) {
	tests := []struct {
		name  string
		bazar string
		units string
		want  string
	}{
		{"even", "1000", "4", "250"},
		{"rounded half to even", "10.01", "2", "5"},
		{"repeating", "100", "3", "33.33"},
		{"zero units", "500", "0", "0"},
		{"fractional units", "45", "1.5", "30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MealRate(money.MustParse(tt.bazar), decimal.RequireFromString(tt.units))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("MealRate(%s, %s) = %s, want %s", tt.bazar, tt.units, got, tt.want)
			}
		})
	}
}

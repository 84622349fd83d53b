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
	january  = models.Month{Year: 2025, Month: time.January}
	february = models.Month{Year: 2025, Month: time.February}
	march    = models.Month{Year: 2025, Month: time.March}
)

func testSnapshot() models.Snapshot {
	jan := models.NewDate(2025, time.January, 20)
	feb := models.NewDate(2025, time.February, 3)
	return models.Snapshot{
		Group: models.Group{
			ID:        "g1",
			Type:      models.GroupTypeSmartMeal,
			ManagerID: "m",
		},
		Members: []models.Member{member("m", "Manager"), member("a", "A")},
		Expenses: []models.Expense{
			expense("m", "400", "Bazar", jan),
			expense("m", "600", "Bazar", feb),
			expense("a", "200", models.CategoryRent, feb),
		},
		Funds: []models.Fund{
			fund("a", "500", jan),
			fund("a", "300", feb),
		},
		Meals: []models.Meal{
			meal("m", "1", jan), meal("a", "3", jan),
			meal("m", "2", feb), meal("a", "1", feb),
		},
	}
}

func TestComputeLedger(t *testing.T) {
	ledger := ComputeLedger(testSnapshot(), Options{})

	if ledger.GroupID != "g1" || ledger.ManagerID != "m" || ledger.GroupType != models.GroupTypeSmartMeal {
		t.Errorf("ledger header = %s/%s/%s", ledger.GroupID, ledger.ManagerID, ledger.GroupType)
	}

	s := ledger.Summary
	if s.TotalBazar != money.MustParse("1000") || s.TotalFixed != money.MustParse("200") {
		t.Errorf("totals bazar=%s fixed=%s", s.TotalBazar, s.TotalFixed)
	}
	if s.TotalCost != money.MustParse("1200") || s.TotalFunds != money.MustParse("800") {
		t.Errorf("totals cost=%s funds=%s", s.TotalCost, s.TotalFunds)
	}
	if s.ManagerHolding != money.MustParse("-400") {
		t.Errorf("ManagerHolding = %s, want -400", s.ManagerHolding)
	}
	if !s.TotalMeals.Equal(decimal.NewFromInt(7)) {
		t.Errorf("TotalMeals = %s, want 7", s.TotalMeals)
	}
	// 1000 / 7 = 142.857...
	if !s.MealRate.Equal(decimal.RequireFromString("142.86")) {
		t.Errorf("MealRate = %s, want 142.86", s.MealRate)
	}
	if s.Unattributed != 0 {
		t.Errorf("Unattributed = %s, want 0", s.Unattributed)
	}

	// Meal cost: m 3 units -> 428.58 (takes the remainder), a 4 units -> 571.42.
	// m: 1000 paid - 800 collected - 428.58 - 100 rent = -328.58
	// a: 200 paid + 800 deposited - 571.42 - 100 rent  =  328.58
	want := []Settlement{{
		FromID: "m", FromName: "Manager",
		ToID: "a", ToName: "A",
		Amount: money.MustParse("328.58"),
	}}
	if !reflect.DeepEqual(ledger.Settlements, want) {
		t.Errorf("Settlements = %+v, want %+v", ledger.Settlements, want)
	}
}

// The same snapshot always yields the same ledger, settlement order included.
func TestComputeLedgerDeterministic(t *testing.T) {
	first := ComputeLedger(testSnapshot(), Options{})
	second := ComputeLedger(testSnapshot(), Options{})

	if len(first.Settlements) == 0 {
		t.Fatal("expected settlements in the test snapshot")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ComputeLedger is not deterministic:\n first  %+v\n second %+v", first, second)
	}
}

func TestComputeLedgerScenarios(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.Snapshot
		want     []Settlement
	}{
		{
			name: "smart meal",
			snapshot: models.Snapshot{
				Group:    models.Group{ID: "g", Type: models.GroupTypeSmartMeal},
				Members:  []models.Member{member("a", "A"), member("b", "B")},
				Expenses: []models.Expense{expense("a", "1000", "Bazar (Grocery)", day1)},
				Meals:    []models.Meal{meal("a", "2", day1), meal("b", "2", day1)},
			},
			want: []Settlement{{FromID: "b", FromName: "B", ToID: "a", ToName: "A", Amount: money.MustParse("500")}},
		},
		{
			name: "monthly average",
			snapshot: models.Snapshot{
				Group:    models.Group{ID: "g", Type: models.GroupTypeMonthlyAvg},
				Members:  []models.Member{member("a", "A"), member("b", "B")},
				Expenses: []models.Expense{expense("a", "600", "Bazar", day1)},
			},
			want: []Settlement{{FromID: "b", FromName: "B", ToID: "a", ToName: "A", Amount: money.MustParse("300")}},
		},
		{
			name: "fund deposit",
			snapshot: models.Snapshot{
				Group:   models.Group{ID: "g", Type: models.GroupTypeSmartMeal, ManagerID: "m"},
				Members: []models.Member{member("m", "M"), member("a", "A")},
				Funds:   []models.Fund{fund("a", "200", day1)},
			},
			want: []Settlement{{FromID: "m", FromName: "M", ToID: "a", ToName: "A", Amount: money.MustParse("200")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := ComputeLedger(tt.snapshot, Options{})
			if !reflect.DeepEqual(ledger.Settlements, tt.want) {
				t.Errorf("Settlements = %+v, want %+v", ledger.Settlements, tt.want)
			}
			if ledger.Summary.Unattributed != 0 {
				t.Errorf("Unattributed = %s, want 0", ledger.Summary.Unattributed)
			}
		})
	}
}

func TestComputeArchiveWindowIsolation(t *testing.T) {
	full := testSnapshot()

	febOnly := testSnapshot()
	febOnly.Expenses = febOnly.Expenses[1:]
	febOnly.Funds = febOnly.Funds[1:]
	febOnly.Meals = febOnly.Meals[2:]

	got := ComputeArchive(full, february, Options{})
	want := ComputeArchive(febOnly, february, Options{})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entries outside the month changed the archive:\n got %+v\nwant %+v", got, want)
	}

	if got.Summary.TotalBazar != money.MustParse("600") {
		t.Errorf("TotalBazar = %s, want 600", got.Summary.TotalBazar)
	}
	if len(got.Funds) != 1 || len(got.Expenses) != 2 {
		t.Errorf("archive lists funds=%d expenses=%d, want 1 and 2", len(got.Funds), len(got.Expenses))
	}
	if len(got.PerUserMeals) != 2 || !got.PerUserMeals[0].Units.Equal(decimal.NewFromInt(2)) {
		t.Errorf("PerUserMeals = %+v", got.PerUserMeals)
	}

	// The input snapshot is left untouched.
	if len(full.Expenses) != 3 || len(full.Meals) != 4 {
		t.Error("ComputeArchive modified its input")
	}
}

func TestComputeArchiveEmptyMonth(t *testing.T) {
	archive := ComputeArchive(testSnapshot(), march, Options{})

	if archive.Month != march {
		t.Errorf("Month = %v, want %v", archive.Month, march)
	}
	s := archive.Summary
	if s.TotalBazar != 0 || s.TotalCost != 0 || s.TotalFunds != 0 || !s.TotalMeals.IsZero() || !s.MealRate.IsZero() {
		t.Errorf("expected zero aggregates, got %+v", s)
	}
	if len(archive.Settlements) != 0 {
		t.Errorf("expected no settlements, got %+v", archive.Settlements)
	}
	for _, b := range archive.Balances {
		if b.Balance != 0 {
			t.Errorf("balance(%s) = %s, want 0", b.UserID, b.Balance)
		}
	}
}

func TestComputeArchiveUnknownMealOwner(t *testing.T) {
	s := testSnapshot()
	s.Meals = append(s.Meals, meal("left", "2", models.NewDate(2025, time.January, 5)))

	archive := ComputeArchive(s, january, Options{})
	last := archive.PerUserMeals[len(archive.PerUserMeals)-1]
	if last.UserID != "left" || last.Name != UnknownName || len(last.Meals) != 1 {
		t.Errorf("unknown meal owner row = %+v", last)
	}
}

func TestComputeMonthStats(t *testing.T) {
	stats := ComputeMonthStats(testSnapshot(), february)

	if stats.TotalBazar != money.MustParse("600") {
		t.Errorf("TotalBazar = %s, want 600", stats.TotalBazar)
	}
	if stats.TotalCost != money.MustParse("800") {
		t.Errorf("TotalCost = %s, want 800", stats.TotalCost)
	}
	if !stats.TotalMeals.Equal(decimal.NewFromInt(3)) {
		t.Errorf("TotalMeals = %s, want 3", stats.TotalMeals)
	}
	if !stats.MealRate.Equal(decimal.NewFromInt(200)) {
		t.Errorf("MealRate = %s, want 200", stats.MealRate)
	}
	if stats.PerMemberCost != money.MustParse("400") {
		t.Errorf("PerMemberCost = %s, want 400", stats.PerMemberCost)
	}
	if len(stats.MemberMeals) != 2 || stats.MemberMeals[0].UserID != "m" {
		t.Errorf("MemberMeals = %+v", stats.MemberMeals)
	}
}

func TestWindow(t *testing.T) {
	d := models.NewDate(2025, time.February, 10)
	if !AllTime().Contains(d) || !AllTime().Contains(models.Date{}) {
		t.Error("AllTime must contain every date")
	}
	if !InMonth(february).Contains(d) || InMonth(january).Contains(d) {
		t.Error("InMonth must match only its own month")
	}
	if m, ok := InMonth(february).Month(); !ok || m != february {
		t.Errorf("Month() = %v, %v", m, ok)
	}
	if _, ok := AllTime().Month(); ok {
		t.Error("AllTime must be unbounded")
	}
}

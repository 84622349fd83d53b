package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

// UnknownName labels balances of users that are not members of the group.
const UnknownName = "Unknown"

// Options tune how costs are allocated.
type Options struct {
	// SplitMiscellaneous charges costs that are neither Bazar nor fixed
	// equally to all members in smart_meal groups. When false, such costs
	// are credited to their payer and charged to nobody; the difference is
	// reported in BalanceSheet.Unattributed.
	SplitMiscellaneous bool
}

// BalanceInput is everything CalculateBalances looks at. Entries are expected
// to be filtered to the wanted window already.
type BalanceInput struct {
	GroupType models.GroupType
	ManagerID string
	Members   []models.Member
	Expenses  []models.Expense
	Funds     []models.Fund
	Meals     []models.Meal
	Options   Options
}

// MemberBalance is one participant's position in a balance sheet.
type MemberBalance struct {
	UserID   string
	Name     string
	IsMember bool

	Paid       money.Amount    // expenses this user paid
	Deposited  money.Amount    // funds this user handed to the manager
	Collected  money.Amount    // funds this user received as manager
	MealUnits  decimal.Decimal // meal units eaten
	MealCost   money.Amount    // share of Bazar, by meal units
	SharedCost money.Amount    // equal share of fixed (or all) costs
	Balance    money.Amount    // positive = is owed, negative = owes
}

// BalanceSheet is the result of CalculateBalances.
type BalanceSheet struct {
	Balances []MemberBalance

	MealRate       decimal.Decimal
	TotalMealUnits decimal.Decimal
	TotalBazar     money.Amount
	TotalFixed     money.Amount
	TotalMisc      money.Amount
	TotalCost      money.Amount // every expense
	TotalFunds     money.Amount

	// Unattributed is the sum of all balances. It is zero whenever every
	// cost was charged to someone and every fund had a manager to hold it.
	Unattributed money.Amount
}

// Balance returns the row for userID.
func (s BalanceSheet) Balance(userID string) (MemberBalance, bool) {
	for _, b := range s.Balances {
		if b.UserID == userID {
			return b, true
		}
	}
	return MemberBalance{}, false
}

// CalculateBalances computes each participant's net position.
//
// Algorithm:
// - Every member starts at zero; users referenced by entries but not in the
//   member list get a row named UnknownName
// - Each expense credits its payer
// - Each fund credits its depositor and debits the manager (if there is one)
// - smart_meal: total Bazar is allocated over meal units, then Rent and
//   Utilities are split equally between members
// - monthly_avg: the total of all expenses is split equally between members
// - balance = paid + deposited - collected - meal cost - shared cost
//
// Rows come back in member order followed by unknown users in order of first
// appearance. The function is pure and deterministic.
func CalculateBalances(in BalanceInput) BalanceSheet {
	book := newBalanceBook(in.Members)
	sheet := BalanceSheet{
		TotalMealUnits: decimal.Zero,
	}

	for _, e := range in.Expenses {
		book.row(e.UserID).Paid += e.Amount
		sheet.TotalCost += e.Amount
		switch e.Kind() {
		case models.CostBazar:
			sheet.TotalBazar += e.Amount
		case models.CostFixed:
			sheet.TotalFixed += e.Amount
		default:
			sheet.TotalMisc += e.Amount
		}
	}

	for _, f := range in.Funds {
		book.row(f.UserID).Deposited += f.Amount
		sheet.TotalFunds += f.Amount
		if in.ManagerID != "" {
			book.row(in.ManagerID).Collected += f.Amount
		}
	}

	// Meal units are tracked for every group type; only smart_meal charges them.
	for _, m := range in.Meals {
		r := book.row(m.UserID)
		r.MealUnits = r.MealUnits.Add(m.Units())
		sheet.TotalMealUnits = sheet.TotalMealUnits.Add(m.Units())
	}
	sheet.MealRate = MealRate(sheet.TotalBazar, sheet.TotalMealUnits)

	switch in.GroupType.OrDefault() {
	case models.GroupTypeMonthlyAvg:
		book.shareEqually(sheet.TotalCost)
	default:
		book.allocateMeals(sheet.TotalBazar)
		shared := sheet.TotalFixed
		if in.Options.SplitMiscellaneous {
			shared += sheet.TotalMisc
		}
		book.shareEqually(shared)
	}

	sheet.Balances = make([]MemberBalance, 0, len(book.rows))
	for _, r := range book.rows {
		r.Balance = r.Paid + r.Deposited - r.Collected - r.MealCost - r.SharedCost
		sheet.Unattributed += r.Balance
		sheet.Balances = append(sheet.Balances, *r)
	}
	return sheet
}

// balanceBook keeps rows in a stable order while allowing lookup by user.
type balanceBook struct {
	rows    []*MemberBalance
	index   map[string]int
	members int // rows[:members] are group members
}

func newBalanceBook(members []models.Member) *balanceBook {
	b := &balanceBook{index: make(map[string]int, len(members))}
	for _, m := range members {
		if _, dup := b.index[m.UserID]; dup {
			continue
		}
		b.index[m.UserID] = len(b.rows)
		b.rows = append(b.rows, &MemberBalance{
			UserID:    m.UserID,
			Name:      m.Name,
			IsMember:  true,
			MealUnits: decimal.Zero,
		})
	}
	b.members = len(b.rows)
	return b
}

func (b *balanceBook) row(userID string) *MemberBalance {
	if i, ok := b.index[userID]; ok {
		return b.rows[i]
	}
	r := &MemberBalance{UserID: userID, Name: UnknownName, MealUnits: decimal.Zero}
	b.index[userID] = len(b.rows)
	b.rows = append(b.rows, r)
	return r
}

// shareEqually charges amount equally to every member. With no members the
// amount stays uncharged.
func (b *balanceBook) shareEqually(amount money.Amount) {
	if amount == 0 || b.members == 0 {
		return
	}
	shares := amount.Split(b.members)
	for i := 0; i < b.members; i++ {
		b.rows[i].SharedCost += shares[i]
	}
}

// allocateMeals charges bazar to everyone who ate, in proportion to units.
// Nothing is charged when no meals were recorded.
func (b *balanceBook) allocateMeals(bazar money.Amount) {
	weights := make([]decimal.Decimal, len(b.rows))
	for i, r := range b.rows {
		weights[i] = r.MealUnits
	}
	for i, share := range bazar.Allocate(weights) {
		b.rows[i].MealCost += share
	}
}

package service

import (
	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
	"github.com/mmynk/hisab/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group, members []models.Member) *api.Group {
	out := &api.Group{
		ID:          g.ID,
		DisplayName: g.DisplayName,
		UniqueName:  g.UniqueName,
		Type:        string(g.Type.OrDefault()),
		ManagerID:   g.ManagerID,
		CreatedAt:   g.CreatedAt,
	}
	for _, m := range members {
		out.Members = append(out.Members, *toAPIMember(m))
	}
	return out
}

func toAPIMember(m models.Member) *api.Member {
	return &api.Member{
		UserID:    m.UserID,
		Name:      m.Name,
		IsManager: m.IsManager,
		Title:     m.Title,
	}
}

// nameOf resolves a user's display name, falling back to calculator.UnknownName.
func nameOf(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok {
		return name
	}
	return calculator.UnknownName
}

func toAPIExpense(e models.Expense, names map[string]string) *api.Expense {
	return &api.Expense{
		ID:       e.ID,
		UserID:   e.UserID,
		UserName: nameOf(names, e.UserID),
		Amount:   e.Amount,
		Category: e.Category,
		Date:     e.Date,
		Items:    e.Items,
	}
}

func toAPIFund(f models.Fund, names map[string]string) *api.Fund {
	return &api.Fund{
		ID:       f.ID,
		UserID:   f.UserID,
		UserName: nameOf(names, f.UserID),
		Amount:   f.Amount,
		Date:     f.Date,
	}
}

func toAPIMeal(m models.Meal, names map[string]string) *api.Meal {
	return &api.Meal{
		ID:             m.ID,
		UserID:         m.UserID,
		UserName:       nameOf(names, m.UserID),
		Date:           m.Date,
		Breakfast:      m.Breakfast,
		Lunch:          m.Lunch,
		Dinner:         m.Dinner,
		GuestMealCount: m.GuestMealCount,
		Units:          m.Units(),
	}
}

// balanceStatus labels a balance the way the dashboard shows it.
func balanceStatus(balance money.Amount) string {
	switch {
	case balance < -money.Epsilon:
		return api.StatusOwes
	case balance > money.Epsilon:
		return api.StatusGetsBack
	default:
		return api.StatusSettled
	}
}

func toAPIBalances(balances []calculator.MemberBalance) []*api.Balance {
	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		out[i] = &api.Balance{
			UserID:     b.UserID,
			Name:       b.Name,
			IsMember:   b.IsMember,
			Paid:       b.Paid,
			Deposited:  b.Deposited,
			MealUnits:  b.MealUnits,
			MealCost:   b.MealCost,
			SharedCost: b.SharedCost,
			Balance:    b.Balance,
			Status:     balanceStatus(b.Balance),
		}
	}
	return out
}

func toAPISettlements(settlements []calculator.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = &api.Settlement{
			FromID:   s.FromID,
			FromName: s.FromName,
			ToID:     s.ToID,
			ToName:   s.ToName,
			Amount:   s.Amount,
		}
	}
	return out
}

func toAPISummary(s calculator.Summary) *api.Summary {
	return &api.Summary{
		MealRate:       s.MealRate,
		TotalMeals:     s.TotalMeals,
		TotalBazar:     s.TotalBazar,
		TotalFixed:     s.TotalFixed,
		TotalMisc:      s.TotalMisc,
		TotalCost:      s.TotalCost,
		TotalFunds:     s.TotalFunds,
		ManagerHolding: s.ManagerHolding,
		Unattributed:   s.Unattributed,
	}
}

func toAPIUserMeals(meals []calculator.UserMeals, names map[string]string, withRecords bool) []*api.UserMeals {
	out := make([]*api.UserMeals, len(meals))
	for i, um := range meals {
		out[i] = &api.UserMeals{UserID: um.UserID, Name: um.Name, Units: um.Units}
		if withRecords {
			for _, m := range um.Meals {
				out[i].Meals = append(out[i].Meals, toAPIMeal(m, names))
			}
		}
	}
	return out
}

func toAPIMonthStats(s calculator.MonthStats, names map[string]string) *api.MonthStats {
	return &api.MonthStats{
		Month:         s.Month.Key(),
		TotalBazar:    s.TotalBazar,
		TotalCost:     s.TotalCost,
		TotalMeals:    s.TotalMeals,
		MealRate:      s.MealRate,
		PerMemberCost: s.PerMemberCost,
		MemberMeals:   toAPIUserMeals(s.MemberMeals, names, false),
	}
}

func toAPINotification(n models.Notification) *api.Notification {
	return &api.Notification{
		ID:        n.ID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func toAPIMealRequest(r *models.MealRequest) *api.MealRequest {
	name := r.UserName
	if name == "" {
		name = calculator.UnknownName
	}
	return &api.MealRequest{
		ID:       r.ID,
		GroupID:  r.GroupID,
		UserID:   r.UserID,
		UserName: name,
		Date:     r.Date,
		Status:   string(r.Status),
		Message:  r.Message,
	}
}

func toAPICashEntry(e models.CashEntry) *api.CashEntry {
	return &api.CashEntry{
		ID:         e.ID,
		Name:       e.Name,
		Receivable: e.Receivable,
		Payable:    e.Payable,
		Net:        e.Net(),
	}
}

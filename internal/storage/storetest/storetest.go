// Package storetest holds behaviour tests every storage.Store backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
	"github.com/mmynk/hisab/internal/storage"
)

// Run exercises store against the storage.Store contract. The store must be
// empty.
func Run(t *testing.T, store storage.Store) {
	ctx := context.Background()

	alice := models.NewUser("alice@example.com", "Alice", "hash-a")
	bob := models.NewUser("bob@example.com", "Bob", "hash-b")

	t.Run("CreateUser and lookups", func(t *testing.T) {
		for _, u := range []*models.User{alice, bob} {
			if err := store.CreateUser(ctx, u); err != nil {
				t.Fatalf("CreateUser failed: %v", err)
			}
		}

		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != alice.ID || got.DisplayName != "Alice" || got.PasswordHash != "hash-a" {
			t.Errorf("GetUserByEmail = %+v", got)
		}

		got, err = store.GetUserByID(ctx, bob.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Email != "bob@example.com" {
			t.Errorf("GetUserByID email = %s", got.Email)
		}

		users, err := store.GetUsersByIDs(ctx, []string{alice.ID, bob.ID, "missing"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("GetUsersByIDs returned %d users, want 2", len(users))
		}
	})

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("missing user is ErrNotFound", func(t *testing.T) {
		if _, err := store.GetUserByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	group := &models.Group{
		UniqueName:  "hall-4",
		DisplayName: "Hall 4 Mess",
		ManagerID:   alice.ID,
	}

	t.Run("CreateGroup adds the manager", func(t *testing.T) {
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" || group.CreatedAt == 0 {
			t.Error("expected ID and CreatedAt to be set")
		}
		if group.Type != models.GroupTypeSmartMeal {
			t.Errorf("Type = %s, want smart_meal", group.Type)
		}

		members, err := store.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 1 || members[0].UserID != alice.ID || !members[0].IsManager || members[0].Title != models.TitleManager {
			t.Errorf("members = %+v", members)
		}
		if members[0].Name != "Alice" {
			t.Errorf("member name = %q, want Alice", members[0].Name)
		}
	})

	t.Run("CreateGroup rejects duplicate unique name", func(t *testing.T) {
		dup := &models.Group{UniqueName: "hall-4", DisplayName: "Other", ManagerID: bob.ID}
		if err := store.CreateGroup(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("membership", func(t *testing.T) {
		byName, err := store.GetGroupByUniqueName(ctx, "hall-4")
		if err != nil {
			t.Fatalf("GetGroupByUniqueName failed: %v", err)
		}
		if byName.ID != group.ID || byName.ManagerID != alice.ID {
			t.Errorf("GetGroupByUniqueName = %+v", byName)
		}

		if err := store.AddMember(ctx, group.ID, models.Member{UserID: bob.ID}); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if err := store.AddMember(ctx, group.ID, models.Member{UserID: bob.ID}); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("second AddMember: expected ErrAlreadyExists, got %v", err)
		}

		m, err := store.GetMember(ctx, group.ID, bob.ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if m.Title != models.TitleMember || m.IsManager {
			t.Errorf("new member = %+v", m)
		}

		if err := store.UpdateMemberRole(ctx, group.ID, bob.ID, false, "Bazar Lead"); err != nil {
			t.Fatalf("UpdateMemberRole failed: %v", err)
		}
		m, _ = store.GetMember(ctx, group.ID, bob.ID)
		if m.Title != "Bazar Lead" {
			t.Errorf("title = %q, want Bazar Lead", m.Title)
		}
		if err := store.UpdateMemberRole(ctx, group.ID, "nobody", false, "x"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateMemberRole(nobody): expected ErrNotFound, got %v", err)
		}

		groups, err := store.ListGroupsForUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("ListGroupsForUser = %+v", groups)
		}

		members, _ := store.ListMembers(ctx, group.ID)
		if len(members) != 2 || members[0].UserID != alice.ID || members[1].UserID != bob.ID {
			t.Errorf("ListMembers order = %+v", members)
		}
	})

	feb1 := models.NewDate(2025, time.February, 1)
	feb2 := models.NewDate(2025, time.February, 2)

	t.Run("entries round trip", func(t *testing.T) {
		// Inserted out of date order; listings come back sorted.
		late := &models.Expense{GroupID: group.ID, UserID: bob.ID, Amount: money.MustParse("120.50"), Category: "Rent", Date: feb2}
		early := &models.Expense{GroupID: group.ID, UserID: alice.ID, Amount: money.MustParse("1000"), Category: "Bazar (Grocery)", Date: feb1, Items: "rice, oil"}
		for _, e := range []*models.Expense{late, early} {
			if err := store.AddExpense(ctx, e); err != nil {
				t.Fatalf("AddExpense failed: %v", err)
			}
		}
		expenses, err := store.ListExpenses(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 2 || expenses[0].ID != early.ID || expenses[1].ID != late.ID {
			t.Fatalf("ListExpenses = %+v", expenses)
		}
		if expenses[0].Amount != money.MustParse("1000") || expenses[0].Items != "rice, oil" || expenses[0].Date != feb1 {
			t.Errorf("expense round trip = %+v", expenses[0])
		}

		f := &models.Fund{GroupID: group.ID, UserID: bob.ID, Amount: money.MustParse("500"), Date: feb1}
		if err := store.AddFund(ctx, f); err != nil {
			t.Fatalf("AddFund failed: %v", err)
		}
		f.Amount = money.MustParse("650.25")
		f.Date = feb2
		if err := store.UpdateFund(ctx, f); err != nil {
			t.Fatalf("UpdateFund failed: %v", err)
		}
		got, err := store.GetFund(ctx, group.ID, f.ID)
		if err != nil {
			t.Fatalf("GetFund failed: %v", err)
		}
		if got.Amount != money.MustParse("650.25") || got.Date != feb2 {
			t.Errorf("updated fund = %+v", got)
		}
		if _, err := store.GetFund(ctx, "other-group", f.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetFund from another group: expected ErrNotFound, got %v", err)
		}

		meal := &models.Meal{
			GroupID:        group.ID,
			UserID:         bob.ID,
			Date:           feb1,
			Breakfast:      decimal.NewFromInt(1),
			Lunch:          decimal.RequireFromString("0.5"),
			Dinner:         decimal.NewFromInt(1),
			GuestMealCount: decimal.Zero,
		}
		if err := store.AddMeal(ctx, meal); err != nil {
			t.Fatalf("AddMeal failed: %v", err)
		}
		meal.GuestMealCount = decimal.NewFromInt(2)
		if err := store.UpdateMeal(ctx, meal); err != nil {
			t.Fatalf("UpdateMeal failed: %v", err)
		}
		meals, err := store.ListMeals(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMeals failed: %v", err)
		}
		if len(meals) != 1 || !meals[0].Units().Equal(decimal.RequireFromString("4.5")) {
			t.Errorf("ListMeals = %+v", meals)
		}
	})

	t.Run("LoadSnapshot", func(t *testing.T) {
		snap, err := storage.LoadSnapshot(ctx, store, group.ID)
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if snap.Group.ID != group.ID || len(snap.Members) != 2 || len(snap.Expenses) != 2 || len(snap.Funds) != 1 || len(snap.Meals) != 1 {
			t.Errorf("snapshot = %+v", snap)
		}
		if _, err := storage.LoadSnapshot(ctx, store, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("missing group: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("notifications", func(t *testing.T) {
		n := &models.Notification{UserID: bob.ID, Message: "hello"}
		if err := store.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification failed: %v", err)
		}
		if err := store.MarkNotificationRead(ctx, alice.ID, n.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("marking someone else's notification: expected ErrNotFound, got %v", err)
		}
		if err := store.MarkNotificationRead(ctx, bob.ID, n.ID); err != nil {
			t.Fatalf("MarkNotificationRead failed: %v", err)
		}
		list, err := store.ListNotifications(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListNotifications failed: %v", err)
		}
		if len(list) != 1 || !list[0].IsRead || list[0].Message != "hello" {
			t.Errorf("ListNotifications = %+v", list)
		}
	})

	t.Run("meal requests", func(t *testing.T) {
		req := &models.MealRequest{GroupID: group.ID, UserID: bob.ID, Date: feb2, Message: "no dinner"}
		if err := store.CreateMealRequest(ctx, req); err != nil {
			t.Fatalf("CreateMealRequest failed: %v", err)
		}
		if req.Status != models.MealRequestPending {
			t.Errorf("Status = %s, want pending", req.Status)
		}
		if err := store.UpdateMealRequestStatus(ctx, group.ID, req.ID, models.MealRequestApproved); err != nil {
			t.Fatalf("UpdateMealRequestStatus failed: %v", err)
		}
		got, err := store.GetMealRequest(ctx, group.ID, req.ID)
		if err != nil {
			t.Fatalf("GetMealRequest failed: %v", err)
		}
		if got.Status != models.MealRequestApproved || got.UserName != "Bob" || got.Date != feb2 {
			t.Errorf("GetMealRequest = %+v", got)
		}
		list, err := store.ListMealRequests(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMealRequests failed: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("ListMealRequests returned %d, want 1", len(list))
		}
	})

	t.Run("RemoveMember keeps entries", func(t *testing.T) {
		if err := store.RemoveMember(ctx, group.ID, bob.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if err := store.RemoveMember(ctx, group.ID, bob.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second RemoveMember: expected ErrNotFound, got %v", err)
		}
		expenses, _ := store.ListExpenses(ctx, group.ID)
		if len(expenses) != 2 {
			t.Errorf("expenses after RemoveMember = %d, want 2", len(expenses))
		}
	})

	t.Run("DeleteGroup cascades", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup after delete: expected ErrNotFound, got %v", err)
		}
		expenses, err := store.ListExpenses(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("expenses after delete = %d, want 0", len(expenses))
		}
		if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteGroup: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateUser", func(t *testing.T) {
		carol := models.NewUser("carol@example.com", "Carol", "hash-c")
		if err := store.CreateUser(ctx, carol); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		carol.Email = "carol@hisab.test"
		carol.DisplayName = "Carol B"
		carol.UpdatedAt = carol.CreatedAt + 60
		if err := store.UpdateUser(ctx, carol); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		got, err := store.GetUserByEmail(ctx, "carol@hisab.test")
		if err != nil {
			t.Fatalf("GetUserByEmail after update failed: %v", err)
		}
		if got.ID != carol.ID || got.DisplayName != "Carol B" || got.UpdatedAt != carol.UpdatedAt {
			t.Errorf("updated user = %+v", got)
		}
		if _, err := store.GetUserByEmail(ctx, "carol@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("old email: expected ErrNotFound, got %v", err)
		}

		carol.Email = "alice@example.com"
		if err := store.UpdateUser(ctx, carol); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("taking another user's email: expected ErrAlreadyExists, got %v", err)
		}

		ghost := models.NewUser("ghost@example.com", "Ghost", "hash")
		if err := store.UpdateUser(ctx, ghost); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("updating a missing user: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("cash book", func(t *testing.T) {
		first := &models.CashEntry{UserID: alice.ID, Name: "Karim", Receivable: money.MustParse("500")}
		second := &models.CashEntry{UserID: alice.ID, Name: "Rahim", Payable: money.MustParse("120.50")}
		for _, c := range []*models.CashEntry{first, second} {
			if err := store.AddCashEntry(ctx, c); err != nil {
				t.Fatalf("AddCashEntry failed: %v", err)
			}
		}
		if err := store.AddCashEntry(ctx, &models.CashEntry{UserID: bob.ID, Name: "Karim"}); err != nil {
			t.Fatalf("AddCashEntry for bob failed: %v", err)
		}

		first.Payable = money.MustParse("200")
		first.Name = "Karim Bhai"
		if err := store.UpdateCashEntry(ctx, first); err != nil {
			t.Fatalf("UpdateCashEntry failed: %v", err)
		}
		got, err := store.GetCashEntry(ctx, alice.ID, first.ID)
		if err != nil {
			t.Fatalf("GetCashEntry failed: %v", err)
		}
		if got.Name != "Karim Bhai" || got.Receivable != money.MustParse("500") || got.Payable != money.MustParse("200") {
			t.Errorf("GetCashEntry = %+v", got)
		}

		if _, err := store.GetCashEntry(ctx, bob.ID, first.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("reading another user's line: expected ErrNotFound, got %v", err)
		}
		stolen := *first
		stolen.UserID = bob.ID
		if err := store.UpdateCashEntry(ctx, &stolen); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("updating another user's line: expected ErrNotFound, got %v", err)
		}

		list, err := store.ListCashEntries(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListCashEntries failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
			t.Errorf("ListCashEntries = %+v", list)
		}
	})
}

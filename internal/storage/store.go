// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/hisab/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines every persistence operation the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	EntryStore
	NotificationStore
	CashBookStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts a user. ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUser saves email and display name. ErrAlreadyExists if the
	// email belongs to another account, ErrNotFound if the user is gone.
	UpdateUser(ctx context.Context, user *models.User) error

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and memberships.
type GroupStore interface {
	// CreateGroup inserts the group and makes its manager the first member.
	// The group.ID and group.CreatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByUniqueName(ctx context.Context, uniqueName string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)

	// DeleteGroup removes the group with its memberships and entries.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember returns ErrAlreadyExists if the user is already a member.
	AddMember(ctx context.Context, groupID string, member models.Member) error
	GetMember(ctx context.Context, groupID, userID string) (*models.Member, error)

	// ListMembers returns members in the order they joined.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
	UpdateMemberRole(ctx context.Context, groupID, userID string, isManager bool, title string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// EntryStore persists ledger entries. List methods return entries ordered by
// date, then insertion.
type EntryStore interface {
	AddExpense(ctx context.Context, expense *models.Expense) error
	ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error)

	AddFund(ctx context.Context, fund *models.Fund) error
	GetFund(ctx context.Context, groupID, fundID string) (*models.Fund, error)
	UpdateFund(ctx context.Context, fund *models.Fund) error
	ListFunds(ctx context.Context, groupID string) ([]models.Fund, error)

	AddMeal(ctx context.Context, meal *models.Meal) error
	GetMeal(ctx context.Context, groupID, mealID string) (*models.Meal, error)
	UpdateMeal(ctx context.Context, meal *models.Meal) error
	ListMeals(ctx context.Context, groupID string) ([]models.Meal, error)
}

// NotificationStore persists notifications and meal change requests.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications returns a user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)

	// MarkNotificationRead returns ErrNotFound unless the notification
	// belongs to userID.
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error

	CreateMealRequest(ctx context.Context, req *models.MealRequest) error
	GetMealRequest(ctx context.Context, groupID, requestID string) (*models.MealRequest, error)
	ListMealRequests(ctx context.Context, groupID string) ([]models.MealRequest, error)
	UpdateMealRequestStatus(ctx context.Context, groupID, requestID string, status models.MealRequestStatus) error
}

// CashBookStore persists personal cash books. Every method is scoped to the
// book owner; lines of other users are ErrNotFound.
type CashBookStore interface {
	AddCashEntry(ctx context.Context, entry *models.CashEntry) error
	GetCashEntry(ctx context.Context, userID, entryID string) (*models.CashEntry, error)
	UpdateCashEntry(ctx context.Context, entry *models.CashEntry) error
	ListCashEntries(ctx context.Context, userID string) ([]models.CashEntry, error)
}

package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/money"
)

// Well-known expense categories.
const (
	CategoryBazarPrefix = "Bazar"
	CategoryRent        = "Rent"
	CategoryUtilities   = "Utilities"
)

// CostKind classifies an expense category for allocation.
type CostKind int

const (
	// CostMisc is anything that is neither groceries nor fixed.
	CostMisc CostKind = iota
	// CostBazar is a consumable grocery cost, charged per meal.
	CostBazar
	// CostFixed is rent or utilities, split equally.
	CostFixed
)

// ClassifyCategory maps a free-form category to its CostKind.
// "Bazar (Grocery)", "Bazar (Meat/Fish)" etc. are all CostBazar.
func ClassifyCategory(category string) CostKind {
	switch {
	case strings.HasPrefix(category, CategoryBazarPrefix):
		return CostBazar
	case category == CategoryRent || category == CategoryUtilities:
		return CostFixed
	default:
		return CostMisc
	}
}

// Expense is money a member paid on the group's behalf.
type Expense struct {
	ID       string
	GroupID  string
	UserID   string // payer
	Amount   money.Amount
	Category string
	Date     Date
	Items    string // optional description of what was bought
}

// Kind classifies the expense category.
func (e Expense) Kind() CostKind {
	return ClassifyCategory(e.Category)
}

// Fund is cash a member handed to the group manager.
type Fund struct {
	ID      string
	GroupID string
	UserID  string // depositor
	Amount  money.Amount
	Date    Date
}

// Meal is one member's meal counts for one day.
type Meal struct {
	ID             string
	GroupID        string
	UserID         string
	Date           Date
	Breakfast      decimal.Decimal
	Lunch          decimal.Decimal
	Dinner         decimal.Decimal
	GuestMealCount decimal.Decimal
}

// Units returns the record's daily meal units: the sum of all four counts.
func (m Meal) Units() decimal.Decimal {
	return m.Breakfast.Add(m.Lunch).Add(m.Dinner).Add(m.GuestMealCount)
}

// Snapshot is everything the calculator needs for one group.
// It is loaded by the caller and must not be modified once handed over.
type Snapshot struct {
	Group    Group
	Members  []Member
	Expenses []Expense
	Funds    []Fund
	Meals    []Meal
}

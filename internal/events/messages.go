package events

import (
	"fmt"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/money"
)

// Messages renders notification texts with the configured currency label.
type Messages struct {
	Currency string
}

func (m Messages) ExpenseAdded(amount money.Amount, by, category string) string {
	return fmt.Sprintf("New expense of %s %s added by %s: %s", amount, m.Currency, by, category)
}

func (m Messages) FundAdded(amount money.Amount, by string) string {
	return fmt.Sprintf("%s deposited %s %s to fund.", by, amount, m.Currency)
}

func (m Messages) Reminder(groupName string) string {
	return fmt.Sprintf("Reminder: You have pending dues in %s. Please settle soon.", groupName)
}

func (m Messages) MealRequestCreated(by string, date models.Date, message string) string {
	return fmt.Sprintf("%s requested a meal change for %s: %s", by, date, message)
}

func (m Messages) MealRequestResolved(date models.Date, status models.MealRequestStatus) string {
	return fmt.Sprintf("Your meal request for %s was %s.", date, status)
}

package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hisab/internal/models"
)

func newID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// AddExpense persists a new expense.
func (s *Store) AddExpense(ctx context.Context, e *models.Expense) error {
	newID(&e.ID)
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO expenses (id, group_id, user_id, amount, category, date, items, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.GroupID, e.UserID, e.Amount, e.Category, e.Date, e.Items, time.Now().Unix(),
	)
	if err != nil {
		return s.wrapWrite("insert expense", err)
	}
	return nil
}

// ListExpenses returns a group's expenses by date.
func (s *Store) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, group_id, user_id, amount, category, date, items
		 FROM expenses WHERE group_id = ?
		 ORDER BY date, `+s.dialect.RowOrder),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.UserID, &e.Amount, &e.Category, &e.Date, &e.Items); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// AddFund persists a new fund deposit.
func (s *Store) AddFund(ctx context.Context, f *models.Fund) error {
	newID(&f.ID)
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO funds (id, group_id, user_id, amount, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		f.ID, f.GroupID, f.UserID, f.Amount, f.Date, time.Now().Unix(),
	)
	if err != nil {
		return s.wrapWrite("insert fund", err)
	}
	return nil
}

// GetFund retrieves a fund that belongs to groupID.
func (s *Store) GetFund(ctx context.Context, groupID, fundID string) (*models.Fund, error) {
	f := &models.Fund{}
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT id, group_id, user_id, amount, date FROM funds WHERE id = ? AND group_id = ?`),
		fundID, groupID,
	).Scan(&f.ID, &f.GroupID, &f.UserID, &f.Amount, &f.Date)
	if err != nil {
		return nil, notFound("fund", fundID, err)
	}
	return f, nil
}

// UpdateFund changes the amount and date of an existing fund.
func (s *Store) UpdateFund(ctx context.Context, f *models.Fund) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE funds SET amount = ?, date = ? WHERE id = ? AND group_id = ?`),
		f.Amount, f.Date, f.ID, f.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fund: %w", err)
	}
	return expectOne(res, "fund", f.ID)
}

// ListFunds returns a group's fund deposits by date.
func (s *Store) ListFunds(ctx context.Context, groupID string) ([]models.Fund, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, group_id, user_id, amount, date
		 FROM funds WHERE group_id = ?
		 ORDER BY date, `+s.dialect.RowOrder),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []models.Fund
	for rows.Next() {
		var f models.Fund
		if err := rows.Scan(&f.ID, &f.GroupID, &f.UserID, &f.Amount, &f.Date); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}
	return funds, nil
}

const mealColumns = `id, group_id, user_id, date, breakfast, lunch, dinner, guest_meal_count`

func scanMeal(row rowScanner, m *models.Meal) error {
	return row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Date, &m.Breakfast, &m.Lunch, &m.Dinner, &m.GuestMealCount)
}

// AddMeal persists a day's meal counts.
func (s *Store) AddMeal(ctx context.Context, m *models.Meal) error {
	newID(&m.ID)
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO meals (`+mealColumns+`, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.GroupID, m.UserID, m.Date, m.Breakfast, m.Lunch, m.Dinner, m.GuestMealCount, time.Now().Unix(),
	)
	if err != nil {
		return s.wrapWrite("insert meal", err)
	}
	return nil
}

// GetMeal retrieves a meal record that belongs to groupID.
func (s *Store) GetMeal(ctx context.Context, groupID, mealID string) (*models.Meal, error) {
	m := &models.Meal{}
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+mealColumns+` FROM meals WHERE id = ? AND group_id = ?`), mealID, groupID)
	if err := scanMeal(row, m); err != nil {
		return nil, notFound("meal", mealID, err)
	}
	return m, nil
}

// UpdateMeal overwrites the four counts of an existing record.
func (s *Store) UpdateMeal(ctx context.Context, m *models.Meal) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE meals SET breakfast = ?, lunch = ?, dinner = ?, guest_meal_count = ?
		 WHERE id = ? AND group_id = ?`),
		m.Breakfast, m.Lunch, m.Dinner, m.GuestMealCount, m.ID, m.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meal: %w", err)
	}
	return expectOne(res, "meal", m.ID)
}

// ListMeals returns a group's meal records by date.
func (s *Store) ListMeals(ctx context.Context, groupID string) ([]models.Meal, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT `+mealColumns+` FROM meals WHERE group_id = ? ORDER BY date, `+s.dialect.RowOrder),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		var m models.Meal
		if err := scanMeal(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}
	return meals, nil
}

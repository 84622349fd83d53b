package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/hisab/internal/models"
)

const cashColumns = `id, user_id, name, receivable, payable, created_at`

func scanCashEntry(row rowScanner, c *models.CashEntry) error {
	return row.Scan(&c.ID, &c.UserID, &c.Name, &c.Receivable, &c.Payable, &c.CreatedAt)
}

// AddCashEntry persists a new personal cash book line.
func (s *Store) AddCashEntry(ctx context.Context, c *models.CashEntry) error {
	newID(&c.ID)
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO personal_cash (`+cashColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		c.ID, c.UserID, c.Name, c.Receivable, c.Payable, c.CreatedAt,
	)
	if err != nil {
		return s.wrapWrite("insert cash entry", err)
	}
	return nil
}

// GetCashEntry retrieves a line from userID's book.
func (s *Store) GetCashEntry(ctx context.Context, userID, entryID string) (*models.CashEntry, error) {
	c := &models.CashEntry{}
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+cashColumns+` FROM personal_cash WHERE id = ? AND user_id = ?`), entryID, userID)
	if err := scanCashEntry(row, c); err != nil {
		return nil, notFound("cash entry", entryID, err)
	}
	return c, nil
}

// UpdateCashEntry overwrites the name and both amounts of an existing line.
func (s *Store) UpdateCashEntry(ctx context.Context, c *models.CashEntry) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE personal_cash SET name = ?, receivable = ?, payable = ? WHERE id = ? AND user_id = ?`),
		c.Name, c.Receivable, c.Payable, c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cash entry: %w", err)
	}
	return expectOne(res, "cash entry", c.ID)
}

// ListCashEntries returns userID's book in insertion order.
func (s *Store) ListCashEntries(ctx context.Context, userID string) ([]models.CashEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT `+cashColumns+` FROM personal_cash WHERE user_id = ?
		 ORDER BY created_at, `+s.dialect.RowOrder),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash entries: %w", err)
	}
	defer rows.Close()

	var out []models.CashEntry
	for rows.Next() {
		var c models.CashEntry
		if err := scanCashEntry(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan cash entry: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cash entries: %w", err)
	}
	return out, nil
}

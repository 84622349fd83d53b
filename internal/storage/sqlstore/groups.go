package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hisab/internal/models"
)

const groupColumns = `id, unique_name, display_name, group_type, COALESCE(manager_id, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner, g *models.Group) error {
	return row.Scan(&g.ID, &g.UniqueName, &g.DisplayName, &g.Type, &g.ManagerID, &g.CreatedAt)
}

// nullable stores empty strings as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateGroup persists a new group. Its manager, if set, is added as the
// first member with the Manager title.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.Type = group.Type.OrDefault()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(
		`INSERT INTO groups (id, unique_name, display_name, group_type, manager_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		group.ID, group.UniqueName, group.DisplayName, string(group.Type), nullable(group.ManagerID), group.CreatedAt,
	)
	if err != nil {
		return s.wrapWrite("insert group", err)
	}

	if group.ManagerID != "" {
		_, err = tx.ExecContext(ctx, s.q(
			`INSERT INTO group_members (group_id, user_id, is_manager, title, joined_at)
			 VALUES (?, ?, ?, ?, ?)`),
			group.ID, group.ManagerID, true, models.TitleManager, group.CreatedAt,
		)
		if err != nil {
			return s.wrapWrite("insert manager membership", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	g := &models.Group{}
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+groupColumns+` FROM groups WHERE id = ?`), groupID)
	if err := scanGroup(row, g); err != nil {
		return nil, notFound("group", groupID, err)
	}
	return g, nil
}

// GetGroupByUniqueName retrieves a group by the handle members join with.
func (s *Store) GetGroupByUniqueName(ctx context.Context, uniqueName string) (*models.Group, error) {
	g := &models.Group{}
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+groupColumns+` FROM groups WHERE unique_name = ?`), uniqueName)
	if err := scanGroup(row, g); err != nil {
		return nil, notFound("group", uniqueName, err)
	}
	return g, nil
}

// ListGroupsForUser returns the groups a user belongs to, oldest first.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT g.id, g.unique_name, g.display_name, g.group_type, COALESCE(g.manager_id, ''), g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at, g.id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := scanGroup(rows, &g); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// DeleteGroup removes a group together with everything recorded in it.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"meal_requests", "meals", "funds", "expenses", "group_members"} {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM `+table+` WHERE group_id = ?`), groupID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM groups WHERE id = ?`), groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if err := expectOne(res, "group", groupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddMember adds a user to a group.
func (s *Store) AddMember(ctx context.Context, groupID string, member models.Member) error {
	title := member.Title
	if title == "" {
		title = models.TitleMember
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO group_members (group_id, user_id, is_manager, title, joined_at)
		 VALUES (?, ?, ?, ?, ?)`),
		groupID, member.UserID, member.IsManager, title, time.Now().Unix(),
	)
	if err != nil {
		return s.wrapWrite("add member", err)
	}
	return nil
}

const memberQuery = `
	SELECT gm.user_id, COALESCE(u.display_name, 'Unknown'), gm.is_manager, gm.title
	FROM group_members gm
	LEFT JOIN users u ON u.id = gm.user_id
	WHERE gm.group_id = ?`

// GetMember retrieves one membership.
func (s *Store) GetMember(ctx context.Context, groupID, userID string) (*models.Member, error) {
	m := &models.Member{}
	err := s.db.QueryRowContext(ctx, s.q(memberQuery+` AND gm.user_id = ?`), groupID, userID).
		Scan(&m.UserID, &m.Name, &m.IsManager, &m.Title)
	if err != nil {
		return nil, notFound("member", userID, err)
	}
	return m, nil
}

// ListMembers returns a group's members in the order they joined.
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, s.q(memberQuery+` ORDER BY gm.joined_at, gm.`+s.dialect.RowOrder), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.IsManager, &m.Title); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// UpdateMemberRole changes a member's manager flag and title.
func (s *Store) UpdateMemberRole(ctx context.Context, groupID, userID string, isManager bool, title string) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE group_members SET is_manager = ?, title = ? WHERE group_id = ? AND user_id = ?`),
		isManager, title, groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return expectOne(res, "member", userID)
}

// RemoveMember deletes a membership. Entries the user recorded are kept.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`),
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return expectOne(res, "member", userID)
}

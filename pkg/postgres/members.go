package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

// SyncTeamMembers makes the team_members table match the given members.
// Members are matched on name; anyone not in the list is removed.
func (d *DB) SyncTeamMembers(ctx context.Context, members []model.TeamMember) error {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}

	if _, err := tx.Exec(ctx, `DELETE FROM team_members WHERE NOT (name = ANY($1))`, names); err != nil {
		return fmt.Errorf("failed to remove stale team members: %w", err)
	}

	for _, m := range members {
		var email *string
		if m.Email != "" {
			email = &m.Email
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO team_members (name, priority, color, is_active, email, access_key)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO UPDATE SET
				priority = EXCLUDED.priority,
				color = EXCLUDED.color,
				is_active = EXCLUDED.is_active,
				email = EXCLUDED.email,
				access_key = EXCLUDED.access_key
		`, m.Name, m.Priority, m.Color, m.IsActive, email, m.AccessKey)
		if err != nil {
			return fmt.Errorf("failed to upsert team member %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTeamMembers retrieves all team members ordered by priority
func (d *DB) GetTeamMembers(ctx context.Context) ([]model.TeamMember, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, priority, color, is_active, email, access_key
		FROM team_members
		ORDER BY priority, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		var m model.TeamMember
		var email *string
		if err := rows.Scan(&m.ID, &m.Name, &m.Priority, &m.Color, &m.IsActive, &email, &m.AccessKey); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		if email != nil {
			m.Email = *email
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team members: %w", err)
	}

	return members, nil
}

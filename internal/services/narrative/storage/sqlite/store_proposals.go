package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/evolution"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

const proposalColumns = "id, game_id, evolution_type, entity_type, entity_id, trait, target_type, target_id, dimension, old_value, new_value, reason, source_event_id, turn, status, dm_notes, created_at, updated_at, resolved_at"

// InsertProposal persists one new proposal row.
func (s *Store) InsertProposal(ctx context.Context, p evolution.Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO evolution_proposals (id, game_id, evolution_type, entity_type, entity_id, trait, target_type, target_id, dimension, old_value, new_value, reason, source_event_id, turn, status, dm_notes, created_at, updated_at, resolved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		p.ID, p.GameID, string(p.Type), string(p.Entity.Type), p.Entity.ID,
		string(p.Trait), string(p.Target.Type), p.Target.ID, string(p.Dimension), p.OldValue, p.NewValue,
		p.Reason, p.SourceEventID, p.Turn, string(p.Status), p.DMNotes,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt), toNullMillis(p.ResolvedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// GetProposal returns one proposal scoped by game.
func (s *Store) GetProposal(ctx context.Context, gameID, proposalID string) (evolution.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return evolution.Proposal{}, err
	}
	if err := s.ready(); err != nil {
		return evolution.Proposal{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, fmt.Sprintf(`
SELECT %s FROM evolution_proposals WHERE game_id = ? AND id = ?
`, proposalColumns), gameID, proposalID)

	p, err := scanProposal(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return evolution.Proposal{}, storage.ErrNotFound
		}
		return evolution.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}
	return p, nil
}

// UpdatePendingProposal persists edited content only while the row is still
// pending. It returns storage.ErrNotFound for missing or resolved rows.
func (s *Store) UpdatePendingProposal(ctx context.Context, p evolution.Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE evolution_proposals
SET trait = ?, target_type = ?, target_id = ?, dimension = ?, new_value = ?, reason = ?, updated_at = ?
WHERE game_id = ? AND id = ? AND status = ?
`,
		string(p.Trait), string(p.Target.Type), p.Target.ID, string(p.Dimension), p.NewValue,
		p.Reason, toMillis(p.UpdatedAt),
		p.GameID, p.ID, string(evolution.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("update pending proposal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pending proposal rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkProposalResolved atomically transitions a pending row to the given
// terminal status. The conditional WHERE means exactly one of any concurrent
// resolutions observes the transition; the rest get storage.ErrNotFound.
func (s *Store) MarkProposalResolved(ctx context.Context, gameID, proposalID string, status evolution.Status, dmNotes string, resolvedAt time.Time) (evolution.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return evolution.Proposal{}, err
	}
	if err := s.ready(); err != nil {
		return evolution.Proposal{}, err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE evolution_proposals
SET status = ?, dm_notes = ?, resolved_at = ?, updated_at = ?
WHERE game_id = ? AND id = ? AND status = ?
`, string(status), dmNotes, toMillis(resolvedAt), toMillis(resolvedAt), gameID, proposalID, string(evolution.StatusPending))
	if err != nil {
		return evolution.Proposal{}, fmt.Errorf("mark proposal resolved: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return evolution.Proposal{}, fmt.Errorf("mark proposal resolved rows affected: %w", err)
	}
	if affected == 0 {
		return evolution.Proposal{}, storage.ErrNotFound
	}
	return s.GetProposal(ctx, gameID, proposalID)
}

// ListPendingProposals lists a game's pending proposals newest-first with
// cursor pagination.
func (s *Store) ListPendingProposals(ctx context.Context, gameID string, pageSize int, pageToken string) (evolution.ProposalPage, error) {
	if err := ctx.Err(); err != nil {
		return evolution.ProposalPage{}, err
	}
	if err := s.ready(); err != nil {
		return evolution.ProposalPage{}, err
	}
	if pageSize <= 0 {
		return evolution.ProposalPage{}, fmt.Errorf("page size must be greater than zero")
	}

	query := fmt.Sprintf("SELECT %s FROM evolution_proposals WHERE game_id = ? AND status = ?", proposalColumns)
	args := []any{gameID, string(evolution.StatusPending)}

	pageToken = strings.TrimSpace(pageToken)
	if pageToken != "" {
		var tokenCreatedAt int64
		row := s.sqlDB.QueryRowContext(ctx, "SELECT created_at FROM evolution_proposals WHERE game_id = ? AND id = ?", gameID, pageToken)
		if err := row.Scan(&tokenCreatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return evolution.ProposalPage{}, nil
			}
			return evolution.ProposalPage{}, fmt.Errorf("resolve proposal page token: %w", err)
		}
		query += " AND (created_at < ? OR (created_at = ? AND id < ?))"
		args = append(args, tokenCreatedAt, tokenCreatedAt, pageToken)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return evolution.ProposalPage{}, fmt.Errorf("list pending proposals: %w", err)
	}
	defer rows.Close()

	var proposals []evolution.Proposal
	for rows.Next() {
		p, err := scanProposal(rows.Scan)
		if err != nil {
			return evolution.ProposalPage{}, err
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return evolution.ProposalPage{}, fmt.Errorf("iterate proposals: %w", err)
	}

	page := evolution.ProposalPage{Proposals: proposals}
	if len(proposals) > pageSize {
		page.Proposals = proposals[:pageSize]
		page.NextPageToken = page.Proposals[pageSize-1].ID
	}
	return page, nil
}

// DeleteProposalsByGame purges every proposal for a game and returns how
// many rows were removed.
func (s *Store) DeleteProposalsByGame(ctx context.Context, gameID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}

	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM evolution_proposals WHERE game_id = ?", gameID)
	if err != nil {
		return 0, fmt.Errorf("delete proposals: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete proposals rows affected: %w", err)
	}
	return int(affected), nil
}

func scanProposal(scan func(...any) error) (evolution.Proposal, error) {
	var (
		p             evolution.Proposal
		evolutionType string
		entityType    string
		name          string
		targetType    string
		dimension     string
		status        string
		createdAt     int64
		updatedAt     int64
		resolvedAt    sql.NullInt64
	)
	if err := scan(
		&p.ID, &p.GameID, &evolutionType, &entityType, &p.Entity.ID,
		&name, &targetType, &p.Target.ID, &dimension, &p.OldValue, &p.NewValue,
		&p.Reason, &p.SourceEventID, &p.Turn, &status, &p.DMNotes,
		&createdAt, &updatedAt, &resolvedAt,
	); err != nil {
		return evolution.Proposal{}, err
	}
	p.Type = evolution.Type(evolutionType)
	p.Entity.Type = event.EntityType(entityType)
	p.Trait = trait.Name(name)
	p.Target.Type = event.EntityType(targetType)
	p.Dimension = relationship.Dimension(dimension)
	p.Status = evolution.Status(status)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	p.ResolvedAt = fromNullMillis(resolvedAt)
	return p, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ligapro/liga-backend/models"
)

type RankingHistoryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.RankingHistory) error
	// ListByMember возвращает записи участника новее since, от новых к старым.
	ListByMember(ctx context.Context, memberID int, since *time.Time) ([]*models.RankingHistory, error)
	ListByMemberPaginated(ctx context.Context, memberID, limit, offset int) ([]*models.RankingHistory, error)
	// FirstInTournament/LastInTournament ограничивают историю одним турниром;
	// (nil, nil) — когда у участника нет записей в этом турнире.
	FirstInTournament(ctx context.Context, memberID, tournamentID int) (*models.RankingHistory, error)
	LastInTournament(ctx context.Context, memberID, tournamentID int) (*models.RankingHistory, error)
}

type postgresRankingHistoryRepository struct {
	db *sql.DB
}

func NewPostgresRankingHistoryRepository(db *sql.DB) RankingHistoryRepository {
	return &postgresRankingHistoryRepository{db: db}
}

const rankingHistoryColumns = `id, member_id, ranking, previous_ranking, change,
	game_id, tournament_id, reason, created_at`

func (r *postgresRankingHistoryRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.RankingHistory) error {
	query := `
		INSERT INTO ranking_history
			(member_id, ranking, previous_ranking, change, game_id, tournament_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		entry.MemberID, entry.Ranking, entry.PreviousRanking, entry.Change,
		entry.GameID, entry.TournamentID, entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ranking history entry for member %d: %w", entry.MemberID, err)
	}
	return nil
}

func (r *postgresRankingHistoryRepository) ListByMember(ctx context.Context, memberID int, since *time.Time) ([]*models.RankingHistory, error) {
	query := `SELECT ` + rankingHistoryColumns + ` FROM ranking_history WHERE member_id = $1`
	args := []interface{}{memberID}
	if since != nil {
		query += ` AND created_at >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking history of member %d: %w", memberID, err)
	}
	return collectRankingHistory(rows)
}

func (r *postgresRankingHistoryRepository) ListByMemberPaginated(ctx context.Context, memberID, limit, offset int) ([]*models.RankingHistory, error) {
	query := `SELECT ` + rankingHistoryColumns + `
		FROM ranking_history
		WHERE member_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking history page of member %d: %w", memberID, err)
	}
	return collectRankingHistory(rows)
}

func (r *postgresRankingHistoryRepository) FirstInTournament(ctx context.Context, memberID, tournamentID int) (*models.RankingHistory, error) {
	return r.boundaryInTournament(ctx, memberID, tournamentID, "ASC")
}

func (r *postgresRankingHistoryRepository) LastInTournament(ctx context.Context, memberID, tournamentID int) (*models.RankingHistory, error) {
	return r.boundaryInTournament(ctx, memberID, tournamentID, "DESC")
}

func (r *postgresRankingHistoryRepository) boundaryInTournament(ctx context.Context, memberID, tournamentID int, direction string) (*models.RankingHistory, error) {
	query := `SELECT ` + rankingHistoryColumns + `
		FROM ranking_history
		WHERE member_id = $1 AND tournament_id = $2
		ORDER BY created_at ` + direction + `, id ` + direction + `
		LIMIT 1`

	entry, err := scanRankingHistory(r.db.QueryRowContext(ctx, query, memberID, tournamentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan tournament ranking history boundary for member %d: %w", memberID, err)
	}
	return entry, nil
}

func scanRankingHistory(row rowScanner) (*models.RankingHistory, error) {
	entry := &models.RankingHistory{}
	err := row.Scan(
		&entry.ID, &entry.MemberID, &entry.Ranking, &entry.PreviousRanking, &entry.Change,
		&entry.GameID, &entry.TournamentID, &entry.Reason, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func collectRankingHistory(rows *sql.Rows) ([]*models.RankingHistory, error) {
	defer rows.Close()

	entries := make([]*models.RankingHistory, 0)
	for rows.Next() {
		entry, err := scanRankingHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking history row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ranking history rows iteration: %w", err)
	}
	return entries, nil
}

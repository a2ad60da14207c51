package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ligapro/liga-backend/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// List возвращает турниры со счётчиками матчей и участников.
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateImageKey(ctx context.Context, id int, key *string) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, club_id, elimination_type, seeding_type,
	participants_number, groups_number, advancers_per_group, rounds,
	affects_ranking, status, date, main_image_key, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(name, club_id, elimination_type, seeding_type, participants_number,
			 groups_number, advancers_per_group, rounds, affects_ranking, status, date, main_image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.ClubID, t.EliminationType, t.SeedingType, t.ParticipantsNumber,
		t.GroupsNumber, t.AdvancersPerGroup, t.Rounds, t.AffectsRanking, t.Status, t.Date, t.MainImageKey,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if constraint, ok := pqConstraint(err); ok && constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.ClubID, &t.EliminationType, &t.SeedingType,
		&t.ParticipantsNumber, &t.GroupsNumber, &t.AdvancersPerGroup, &t.Rounds,
		&t.AffectsRanking, &t.Status, &t.Date, &t.MainImageKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.club_id, t.elimination_type, t.seeding_type,
		       t.participants_number, t.groups_number, t.advancers_per_group, t.rounds,
		       t.affects_ranking, t.status, t.date, t.main_image_key, t.created_at,
		       (SELECT count(*) FROM games g WHERE g.tournament_id = t.id),
		       (SELECT count(*) FROM tournament_registrations tr WHERE tr.tournament_id = t.id)
		FROM tournaments t
		ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t := &models.Tournament{}
		var gamesCount, membersCount int
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.ClubID, &t.EliminationType, &t.SeedingType,
			&t.ParticipantsNumber, &t.GroupsNumber, &t.AdvancersPerGroup, &t.Rounds,
			&t.AffectsRanking, &t.Status, &t.Date, &t.MainImageKey, &t.CreatedAt,
			&gamesCount, &membersCount,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		t.GamesCount = &gamesCount
		t.MembersCount = &membersCount
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateImageKey(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET main_image_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d image key: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

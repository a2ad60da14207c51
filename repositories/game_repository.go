package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ligapro/liga-backend/models"
)

var (
	ErrGameNotFound          = errors.New("game not found")
	ErrGameTournamentInvalid = errors.New("game tournament conflict or invalid")
	ErrGameMemberInvalid     = errors.New("game member conflict or invalid")
)

// GameListFilter сужает выборку ListByTournament; nil-поля игнорируются.
type GameListFilter struct {
	Round     *int
	GroupName *string
	Status    *models.GameStatus
}

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int, filter GameListFilter) ([]*models.Game, error)
	ListByTournamentWithMembers(ctx context.Context, tournamentID int) ([]*models.Game, error)
	UpdateScoreStatusWinner(ctx context.Context, exec SQLExecutor, id int, score1, score2 *int, status models.GameStatus, winnerID *int) error
	UpdateMembers(ctx context.Context, exec SQLExecutor, id int, member1ID, member2ID *int, status models.GameStatus) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, tournament_id, round, group_name, member1_id, member2_id,
	score1, score2, winner_id, status, pairing_info, elimination_game_id, slot_index,
	created_at, updated_at`

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	query := `
		INSERT INTO games
			(tournament_id, round, group_name, member1_id, member2_id, score1, score2,
			 winner_id, status, pairing_info, elimination_game_id, slot_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		game.TournamentID,
		game.Round,
		game.GroupName,
		game.Member1ID,
		game.Member2ID,
		game.Score1,
		game.Score2,
		game.WinnerID,
		game.Status,
		game.Pairing,
		game.EliminationGameID,
		game.SlotIndex,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	return handleGameError(err)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game by id %d: %w", id, err)
	}
	return game, nil
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, tournamentID int, filter GameListFilter) ([]*models.Game, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + gameColumns + ` FROM games WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2

	if filter.Round != nil {
		queryBuilder.WriteString(" AND round = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Round)
		placeholder++
	}
	if filter.GroupName != nil {
		queryBuilder.WriteString(" AND group_name = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.GroupName)
		placeholder++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(placeholder))
		args = append(args, *filter.Status)
	}

	// slot_index задаётся генератором и определяет порядок матчей в раунде.
	queryBuilder.WriteString(" ORDER BY round ASC NULLS FIRST, group_name ASC NULLS LAST, slot_index ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		game, scanErr := scanGame(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", scanErr)
		}
		games = append(games, game)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}

func (r *postgresGameRepository) ListByTournamentWithMembers(ctx context.Context, tournamentID int) ([]*models.Game, error) {
	query := `
		SELECT g.id, g.tournament_id, g.round, g.group_name, g.member1_id, g.member2_id,
		       g.score1, g.score2, g.winner_id, g.status, g.pairing_info, g.elimination_game_id,
		       g.slot_index, g.created_at, g.updated_at,
		       m1.id, m1.name, m1.ranking, m1.club_id,
		       c1.id, c1.name, c1.logo_key,
		       m2.id, m2.name, m2.ranking, m2.club_id,
		       c2.id, c2.name, c2.logo_key
		FROM games g
		LEFT JOIN members m1 ON m1.id = g.member1_id
		LEFT JOIN clubs c1 ON c1.id = m1.club_id
		LEFT JOIN members m2 ON m2.id = g.member2_id
		LEFT JOIN clubs c2 ON c2.id = m2.club_id
		WHERE g.tournament_id = $1
		ORDER BY g.round ASC NULLS FIRST, g.group_name ASC NULLS LAST, g.slot_index ASC, g.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query games with members for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		var (
			game       models.Game
			pairingRaw []byte

			m1ID, m1Club, c1ID     sql.NullInt64
			m1Name, c1Name, c1Logo sql.NullString
			m1Ranking              sql.NullInt64
			m2ID, m2Club, c2ID     sql.NullInt64
			m2Name, c2Name, c2Logo sql.NullString
			m2Ranking              sql.NullInt64
		)
		if scanErr := rows.Scan(
			&game.ID, &game.TournamentID, &game.Round, &game.GroupName,
			&game.Member1ID, &game.Member2ID, &game.Score1, &game.Score2,
			&game.WinnerID, &game.Status, &pairingRaw, &game.EliminationGameID,
			&game.SlotIndex, &game.CreatedAt, &game.UpdatedAt,
			&m1ID, &m1Name, &m1Ranking, &m1Club,
			&c1ID, &c1Name, &c1Logo,
			&m2ID, &m2Name, &m2Ranking, &m2Club,
			&c2ID, &c2Name, &c2Logo,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan joined game row: %w", scanErr)
		}
		if err := decodePairing(pairingRaw, &game); err != nil {
			return nil, err
		}
		game.Member1 = buildMember(m1ID, m1Name, m1Ranking, m1Club, c1ID, c1Name, c1Logo)
		game.Member2 = buildMember(m2ID, m2Name, m2Ranking, m2Club, c2ID, c2Name, c2Logo)
		games = append(games, &game)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during joined game rows iteration: %w", err)
	}
	return games, nil
}

func (r *postgresGameRepository) UpdateScoreStatusWinner(ctx context.Context, exec SQLExecutor, id int, score1, score2 *int, status models.GameStatus, winnerID *int) error {
	query := `
		UPDATE games
		SET score1 = $1, score2 = $2, status = $3, winner_id = $4, updated_at = now()
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query, score1, score2, status, winnerID, id)
	if err != nil {
		return handleGameError(err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) UpdateMembers(ctx context.Context, exec SQLExecutor, id int, member1ID, member2ID *int, status models.GameStatus) error {
	query := `
		UPDATE games
		SET member1_id = $1, member2_id = $2, status = $3, updated_at = now()
		WHERE id = $4`

	result, err := exec.ExecContext(ctx, query, member1ID, member2ID, status, id)
	if err != nil {
		return handleGameError(err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM games WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete games of tournament %d: %w", tournamentID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var (
		game       models.Game
		pairingRaw []byte
	)
	err := row.Scan(
		&game.ID, &game.TournamentID, &game.Round, &game.GroupName,
		&game.Member1ID, &game.Member2ID, &game.Score1, &game.Score2,
		&game.WinnerID, &game.Status, &pairingRaw, &game.EliminationGameID,
		&game.SlotIndex, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodePairing(pairingRaw, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// decodePairing разворачивает JSON-дескриптор один раз при чтении строки.
func decodePairing(raw []byte, game *models.Game) error {
	if len(raw) == 0 {
		return nil
	}
	pairing := &models.PairingInfo{}
	if err := pairing.Scan(raw); err != nil {
		return fmt.Errorf("game %d: %w", game.ID, err)
	}
	game.Pairing = pairing
	return nil
}

func buildMember(id sql.NullInt64, name sql.NullString, ranking, clubID sql.NullInt64, cID sql.NullInt64, cName, cLogo sql.NullString) *models.Member {
	if !id.Valid {
		return nil
	}
	member := &models.Member{
		ID:      int(id.Int64),
		Name:    name.String,
		Ranking: int(ranking.Int64),
	}
	if clubID.Valid {
		v := int(clubID.Int64)
		member.ClubID = &v
	}
	if cID.Valid {
		club := &models.Club{ID: int(cID.Int64), Name: cName.String}
		if cLogo.Valid {
			key := cLogo.String
			club.LogoKey = &key
		}
		member.Club = club
	}
	return member
}

func handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqConstraint(err); ok {
		switch constraint {
		case "games_tournament_id_fkey":
			return ErrGameTournamentInvalid
		case "games_member1_id_fkey", "games_member2_id_fkey", "games_winner_id_fkey":
			return ErrGameMemberInvalid
		}
	}
	return err
}

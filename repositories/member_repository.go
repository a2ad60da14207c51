package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/ligapro/liga-backend/models"
)

var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrRegistrationConflict = errors.New("member is already registered for this tournament")
	ErrMemberClubInvalid    = errors.New("member club conflict or invalid")
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id int) (*models.Member, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Member, error)
	List(ctx context.Context) ([]*models.Member, error)
	// ListByTournament возвращает участников турнира в порядке регистрации.
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Member, error)
	Register(ctx context.Context, tournamentID, memberID int) error
	UpdateRanking(ctx context.Context, exec SQLExecutor, memberID, ranking int) error
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

const memberWithClubQuery = `
	SELECT m.id, m.name, m.ranking, m.age, m.club_id, m.created_at,
	       c.id, c.name, c.city, c.logo_key, c.created_at
	FROM members m
	LEFT JOIN clubs c ON c.id = m.club_id`

func (r *postgresMemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (name, ranking, age, club_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	ranking := member.Ranking
	if ranking == 0 {
		ranking = models.DefaultRanking
	}
	err := r.db.QueryRowContext(ctx, query, member.Name, ranking, member.Age, member.ClubID).
		Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		if constraint, ok := pqConstraint(err); ok && constraint == "members_club_id_fkey" {
			return ErrMemberClubInvalid
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	member.Ranking = ranking
	return nil
}

func (r *postgresMemberRepository) GetByID(ctx context.Context, id int) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx, memberWithClubQuery+` WHERE m.id = $1`, id)
	member, err := scanMemberWithClub(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to scan member by id %d: %w", id, err)
	}
	return member, nil
}

func (r *postgresMemberRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Member, error) {
	if len(ids) == 0 {
		return []*models.Member{}, nil
	}
	rows, err := r.db.QueryContext(ctx, memberWithClubQuery+` WHERE m.id = ANY($1) ORDER BY m.id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query members by ids: %w", err)
	}
	return collectMembers(rows)
}

func (r *postgresMemberRepository) List(ctx context.Context) ([]*models.Member, error) {
	rows, err := r.db.QueryContext(ctx, memberWithClubQuery+` ORDER BY m.ranking DESC, m.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	return collectMembers(rows)
}

func (r *postgresMemberRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Member, error) {
	query := memberWithClubQuery + `
		JOIN tournament_registrations tr ON tr.member_id = m.id
		WHERE tr.tournament_id = $1
		ORDER BY tr.created_at ASC, tr.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of tournament %d: %w", tournamentID, err)
	}
	return collectMembers(rows)
}

func (r *postgresMemberRepository) Register(ctx context.Context, tournamentID, memberID int) error {
	query := `INSERT INTO tournament_registrations (tournament_id, member_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, tournamentID, memberID)
	if err != nil {
		if constraint, ok := pqConstraint(err); ok {
			switch constraint {
			case "tournament_registrations_tournament_id_member_id_key":
				return ErrRegistrationConflict
			case "tournament_registrations_member_id_fkey":
				return ErrMemberNotFound
			}
		}
		return fmt.Errorf("failed to register member %d for tournament %d: %w", memberID, tournamentID, err)
	}
	return nil
}

func (r *postgresMemberRepository) UpdateRanking(ctx context.Context, exec SQLExecutor, memberID, ranking int) error {
	result, err := exec.ExecContext(ctx, `UPDATE members SET ranking = $1 WHERE id = $2`, ranking, memberID)
	if err != nil {
		return fmt.Errorf("failed to update ranking of member %d: %w", memberID, err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func scanMemberWithClub(row rowScanner) (*models.Member, error) {
	var (
		member models.Member

		clubID        sql.NullInt64
		clubName      sql.NullString
		clubCity      sql.NullString
		clubLogo      sql.NullString
		clubCreatedAt sql.NullTime
	)
	err := row.Scan(
		&member.ID, &member.Name, &member.Ranking, &member.Age, &member.ClubID, &member.CreatedAt,
		&clubID, &clubName, &clubCity, &clubLogo, &clubCreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if clubID.Valid {
		club := &models.Club{ID: int(clubID.Int64), Name: clubName.String, CreatedAt: clubCreatedAt.Time}
		if clubCity.Valid {
			city := clubCity.String
			club.City = &city
		}
		if clubLogo.Valid {
			key := clubLogo.String
			club.LogoKey = &key
		}
		member.Club = club
	}
	return &member, nil
}

func collectMembers(rows *sql.Rows) ([]*models.Member, error) {
	defer rows.Close()

	members := make([]*models.Member, 0)
	for rows.Next() {
		member, err := scanMemberWithClub(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during member rows iteration: %w", err)
	}
	return members, nil
}

package services

import (
	"context"
	"sort"
	"time"

	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
)

// Фейковые репозитории в памяти. Хранят значения, а не указатели, чтобы
// сервисы не могли изменить состояние в обход Update-методов.

type fakeGameRepo struct {
	games  map[int]models.Game
	nextID int

	// members подключается тестом, когда нужна выборка с участниками.
	members *fakeMemberRepo
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[int]models.Game), nextID: 1}
}

func (r *fakeGameRepo) Create(_ context.Context, _ repositories.SQLExecutor, game *models.Game) error {
	game.ID = r.nextID
	r.nextID++
	game.CreatedAt = time.Now()
	r.games[game.ID] = *game
	return nil
}

func (r *fakeGameRepo) GetByID(_ context.Context, id int) (*models.Game, error) {
	game, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return &game, nil
}

func (r *fakeGameRepo) ListByTournament(_ context.Context, tournamentID int, filter repositories.GameListFilter) ([]*models.Game, error) {
	var out []*models.Game
	for id := range r.games {
		game := r.games[id]
		if game.TournamentID != tournamentID {
			continue
		}
		if filter.Round != nil && (game.Round == nil || *game.Round != *filter.Round) {
			continue
		}
		if filter.GroupName != nil && (game.GroupName == nil || *game.GroupName != *filter.GroupName) {
			continue
		}
		if filter.Status != nil && game.Status != *filter.Status {
			continue
		}
		out = append(out, &game)
	}
	sortGames(out)
	return out, nil
}

func (r *fakeGameRepo) ListByTournamentWithMembers(ctx context.Context, tournamentID int) ([]*models.Game, error) {
	games, err := r.ListByTournament(ctx, tournamentID, repositories.GameListFilter{})
	if err != nil || r.members == nil {
		return games, err
	}
	for _, game := range games {
		if game.Member1ID != nil {
			if m, ok := r.members.members[*game.Member1ID]; ok {
				member := m
				game.Member1 = &member
			}
		}
		if game.Member2ID != nil {
			if m, ok := r.members.members[*game.Member2ID]; ok {
				member := m
				game.Member2 = &member
			}
		}
	}
	return games, nil
}

func (r *fakeGameRepo) UpdateScoreStatusWinner(_ context.Context, _ repositories.SQLExecutor, id int, score1, score2 *int, status models.GameStatus, winnerID *int) error {
	game, ok := r.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	game.Score1 = score1
	game.Score2 = score2
	game.Status = status
	game.WinnerID = winnerID
	r.games[id] = game
	return nil
}

func (r *fakeGameRepo) UpdateMembers(_ context.Context, _ repositories.SQLExecutor, id int, member1ID, member2ID *int, status models.GameStatus) error {
	game, ok := r.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	game.Member1ID = member1ID
	game.Member2ID = member2ID
	game.Status = status
	r.games[id] = game
	return nil
}

func (r *fakeGameRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id := range r.games {
		if r.games[id].TournamentID == tournamentID {
			delete(r.games, id)
		}
	}
	return nil
}

func sortGames(games []*models.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, b := games[i], games[j]
		switch {
		case a.Round == nil && b.Round != nil:
			return true
		case a.Round != nil && b.Round == nil:
			return false
		case a.Round != nil && b.Round != nil && *a.Round != *b.Round:
			return *a.Round < *b.Round
		}
		ag, bg := derefString(a.GroupName), derefString(b.GroupName)
		if ag != bg {
			return ag < bg
		}
		if a.SlotIndex != b.SlotIndex {
			return a.SlotIndex < b.SlotIndex
		}
		return a.ID < b.ID
	})
}

type fakeMemberRepo struct {
	members       map[int]models.Member
	registrations map[int][]int // tournamentID -> memberID в порядке регистрации
	nextID        int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		members:       make(map[int]models.Member),
		registrations: make(map[int][]int),
		nextID:        1,
	}
}

func (r *fakeMemberRepo) add(name string, ranking int) *models.Member {
	member := models.Member{ID: r.nextID, Name: name, Ranking: ranking, CreatedAt: time.Now()}
	r.nextID++
	r.members[member.ID] = member
	return &member
}

func (r *fakeMemberRepo) Create(_ context.Context, member *models.Member) error {
	member.ID = r.nextID
	r.nextID++
	member.CreatedAt = time.Now()
	r.members[member.ID] = *member
	return nil
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id int) (*models.Member, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, repositories.ErrMemberNotFound
	}
	return &member, nil
}

func (r *fakeMemberRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Member, error) {
	var out []*models.Member
	for _, id := range ids {
		if member, ok := r.members[id]; ok {
			out = append(out, &member)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) List(_ context.Context) ([]*models.Member, error) {
	var out []*models.Member
	for id := range r.members {
		member := r.members[id]
		out = append(out, &member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ranking > out[j].Ranking })
	return out, nil
}

func (r *fakeMemberRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Member, error) {
	var out []*models.Member
	for _, id := range r.registrations[tournamentID] {
		if member, ok := r.members[id]; ok {
			out = append(out, &member)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Register(_ context.Context, tournamentID, memberID int) error {
	if _, ok := r.members[memberID]; !ok {
		return repositories.ErrMemberNotFound
	}
	for _, id := range r.registrations[tournamentID] {
		if id == memberID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.registrations[tournamentID] = append(r.registrations[tournamentID], memberID)
	return nil
}

func (r *fakeMemberRepo) UpdateRanking(_ context.Context, _ repositories.SQLExecutor, memberID, ranking int) error {
	member, ok := r.members[memberID]
	if !ok {
		return repositories.ErrMemberNotFound
	}
	member.Ranking = ranking
	r.members[memberID] = member
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) add(t models.Tournament) *models.Tournament {
	t.ID = r.nextID
	r.nextID++
	if t.Status == "" {
		t.Status = models.TournamentStatusRegistration
	}
	r.tournaments[t.ID] = t
	return &t
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for id := range r.tournaments {
		t := r.tournaments[id]
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateImageKey(_ context.Context, id int, key *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.MainImageKey = key
	r.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeHistoryRepo struct {
	entries []models.RankingHistory
	nextID  int
	clock   time.Time
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{nextID: 1, clock: time.Now().Add(-time.Hour)}
}

func (r *fakeHistoryRepo) Create(_ context.Context, _ repositories.SQLExecutor, entry *models.RankingHistory) error {
	entry.ID = r.nextID
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	entry.CreatedAt = r.clock
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByMember(_ context.Context, memberID int, since *time.Time) ([]*models.RankingHistory, error) {
	var out []*models.RankingHistory
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.MemberID != memberID {
			continue
		}
		if since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func (r *fakeHistoryRepo) ListByMemberPaginated(ctx context.Context, memberID, limit, offset int) ([]*models.RankingHistory, error) {
	all, _ := r.ListByMember(ctx, memberID, nil)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeHistoryRepo) FirstInTournament(_ context.Context, memberID, tournamentID int) (*models.RankingHistory, error) {
	for i := range r.entries {
		e := r.entries[i]
		if e.MemberID == memberID && e.TournamentID != nil && *e.TournamentID == tournamentID {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *fakeHistoryRepo) LastInTournament(_ context.Context, memberID, tournamentID int) (*models.RankingHistory, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.MemberID == memberID && e.TournamentID != nil && *e.TournamentID == tournamentID {
			return &e, nil
		}
	}
	return nil, nil
}

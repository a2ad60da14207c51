package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ligapro/liga-backend/brackets"
	"github.com/ligapro/liga-backend/models"
	"github.com/ligapro/liga-backend/repositories"
)

type GameService interface {
	// RecordResult сохраняет счёт игры, затем применяет обмен рейтинга и
	// продвижение победителя. Счёт первичен: сбой рейтинга или продвижения
	// логируется, но не отменяет записанный результат.
	RecordResult(ctx context.Context, gameID int, score1, score2 int) (*models.Game, error)
	GetGame(ctx context.Context, gameID int) (*models.Game, error)
}

type gameService struct {
	tx             txRunner
	gameRepo       repositories.GameRepository
	tournamentRepo repositories.TournamentRepository
	memberRepo     repositories.MemberRepository
	ranking        RankingService
	logger         *slog.Logger

	// Один mutex на турнир: конкурентные результаты одного турнира
	// сериализуются, чтобы продвижение не читало устаревшую сетку.
	locks sync.Map
}

func NewGameService(
	db *sql.DB,
	gameRepo repositories.GameRepository,
	tournamentRepo repositories.TournamentRepository,
	memberRepo repositories.MemberRepository,
	ranking RankingService,
	logger *slog.Logger,
) GameService {
	return &gameService{
		tx:             txRunner{db: db},
		gameRepo:       gameRepo,
		tournamentRepo: tournamentRepo,
		memberRepo:     memberRepo,
		ranking:        ranking,
		logger:         logger,
	}
}

func (s *gameService) lockTournament(tournamentID int) func() {
	v, _ := s.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *gameService) GetGame(ctx context.Context, gameID int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	s.attachMembers(ctx, game)
	return game, nil
}

func (s *gameService) RecordResult(ctx context.Context, gameID int, score1, score2 int) (*models.Game, error) {
	if score1 < 0 || score2 < 0 {
		return nil, ErrInvalidScore
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	unlock := s.lockTournament(game.TournamentID)
	defer unlock()

	// Повторное чтение под замком: предыдущий результат мог изменить игру.
	game, err = s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, game.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if !game.HasBothMembers() {
		return nil, ErrGameSlotsIncomplete
	}

	var winnerID *int
	switch {
	case score1 > score2:
		winnerID = game.Member1ID
	case score2 > score1:
		winnerID = game.Member2ID
	default:
		// Ничья допустима только в чистом круговом формате.
		if tournament.EliminationType != models.EliminationRoundRobin {
			return nil, ErrDrawNotAllowed
		}
	}

	err = s.tx.run(ctx, func(exec repositories.SQLExecutor) error {
		return s.gameRepo.UpdateScoreStatusWinner(ctx, exec, game.ID, &score1, &score2, models.GameStatusCompleted, winnerID)
	})
	if err != nil {
		return nil, fmt.Errorf("record result for game %d: %w", game.ID, err)
	}
	game.Score1 = &score1
	game.Score2 = &score2
	game.WinnerID = winnerID
	game.Status = models.GameStatusCompleted

	if winnerID != nil && tournament.AffectsRanking {
		update, rkErr := s.ranking.ProcessGameResult(ctx, game, tournament)
		if rkErr != nil {
			s.logWarn(ctx, "ranking update failed", game, rkErr)
		} else {
			game.RankingUpdate = update
		}
	}

	if winnerID != nil {
		if advErr := s.advance(ctx, tournament, game); advErr != nil {
			s.logWarn(ctx, "advancement failed", game, advErr)
		}
	}

	if cErr := s.maybeCompleteTournament(ctx, tournament); cErr != nil {
		s.logWarn(ctx, "tournament completion check failed", game, cErr)
	}

	s.attachMembers(ctx, game)
	return game, nil
}

// advance двигает сетку вперёд после завершённой игры: групповые игры могут
// закрыть группу и расставить вышедших, игры на вылет продвигают победителя.
func (s *gameService) advance(ctx context.Context, tournament *models.Tournament, game *models.Game) error {
	// Чисто круговой формат не имеет продвижения: расписание фиксировано
	// при генерации, следующий круг не зависит от результатов.
	if tournament.EliminationType == models.EliminationRoundRobin {
		return nil
	}
	if game.IsGroupStage() {
		return s.placeAdvancersFromGroup(ctx, tournament, *game.GroupName)
	}
	if game.Round == nil {
		return nil
	}
	if err := s.propagateWinner(ctx, tournament, game); err != nil {
		return err
	}
	return s.resolveByes(ctx, tournament, *game.Round)
}

// propagateWinner ставит победителя игры в слот следующего круга. Слот
// выбирается по дескриптору пары (game_winners), при его отсутствии —
// позиционно: игра i круга r питает слот i%2+1 игры i/2 круга r+1.
func (s *gameService) propagateWinner(ctx context.Context, tournament *models.Tournament, game *models.Game) error {
	winnerID := game.EffectiveWinner()
	if winnerID == nil || game.Round == nil {
		return nil
	}
	round := *game.Round
	nextRound := round + 1
	nextGames, err := s.gameRepo.ListByTournament(ctx, tournament.ID, repositories.GameListFilter{Round: &nextRound})
	if err != nil {
		return fmt.Errorf("list round %d games: %w", nextRound, err)
	}
	if len(nextGames) == 0 {
		// Финал: дальше двигать некуда.
		return nil
	}

	for _, next := range nextGames {
		if next.Pairing == nil || next.Pairing.Type != models.PairingGameWinners {
			continue
		}
		if next.Pairing.ReferencesGame(1, round, game.SlotIndex) {
			return s.assignSlot(ctx, next, 1, *winnerID, game)
		}
		if next.Pairing.ReferencesGame(2, round, game.SlotIndex) {
			return s.assignSlot(ctx, next, 2, *winnerID, game)
		}
	}

	// Позиционный запасной путь для игр без дескриптора пары.
	targetIndex := game.SlotIndex / 2
	slot := 1
	if game.SlotIndex%2 == 1 {
		slot = 2
	}
	for _, next := range nextGames {
		if next.SlotIndex == targetIndex {
			return s.assignSlot(ctx, next, slot, *winnerID, game)
		}
	}
	return nil
}

// assignSlot записывает участника в слот следующей игры. Повторная отправка
// того же результата идемпотентна; пересмотр результата перезаписывает слот,
// пока следующая игра не завершена.
func (s *gameService) assignSlot(ctx context.Context, next *models.Game, slot int, memberID int, source *models.Game) error {
	if next.Status == models.GameStatusCompleted {
		return nil
	}
	current := next.Member1ID
	if slot == 2 {
		current = next.Member2ID
	}
	if current != nil {
		if *current == memberID {
			return nil
		}
		// Слот занят кем-то, кто не играл в исходной игре — не трогаем.
		if !sourceContains(source, *current) {
			return nil
		}
	}

	member1, member2 := next.Member1ID, next.Member2ID
	if slot == 1 {
		member1 = intPtr(memberID)
	} else {
		member2 = intPtr(memberID)
	}
	status := next.Status
	if member1 != nil && member2 != nil {
		status = models.GameStatusPending
	}
	err := s.tx.run(ctx, func(exec repositories.SQLExecutor) error {
		return s.gameRepo.UpdateMembers(ctx, exec, next.ID, member1, member2, status)
	})
	if err != nil {
		return fmt.Errorf("assign member %d to game %d slot %d: %w", memberID, next.ID, slot, err)
	}
	next.Member1ID = member1
	next.Member2ID = member2
	next.Status = status
	return nil
}

func sourceContains(game *models.Game, memberID int) bool {
	if game.Member1ID != nil && *game.Member1ID == memberID {
		return true
	}
	return game.Member2ID != nil && *game.Member2ID == memberID
}

// resolveByes продвигает единственных участников игр, чей пустой слот
// заведомо не может быть заполнен: у него нет игры-поставщика в предыдущем
// круге. В первом круге это автопроходы рассева, в поздних кругах — игры,
// чья пара была отброшена при генерации.
func (s *gameService) resolveByes(ctx context.Context, tournament *models.Tournament, fromRound int) error {
	round := fromRound
	var prevGames []*models.Game
	if round > 1 {
		prev := round - 1
		var err error
		prevGames, err = s.gameRepo.ListByTournament(ctx, tournament.ID, repositories.GameListFilter{Round: &prev})
		if err != nil {
			return err
		}
	}
	for {
		games, err := s.gameRepo.ListByTournament(ctx, tournament.ID, repositories.GameListFilter{Round: &round})
		if err != nil {
			return err
		}
		if len(games) == 0 {
			return nil
		}
		for _, game := range games {
			if game.Status != models.GameStatusWaitingForWinner {
				continue
			}
			sole := game.SoleMember()
			if sole == nil {
				continue
			}
			emptySlot := 1
			if game.Member2ID == nil {
				emptySlot = 2
			}
			if feederExists(game, emptySlot, round, prevGames) {
				continue
			}
			if err := s.propagateWinner(ctx, tournament, game); err != nil {
				return err
			}
		}
		prevGames = games
		round++
	}
}

// feederExists проверяет, есть ли в предыдущем круге игра, питающая данный слот.
func feederExists(game *models.Game, slot, round int, prevGames []*models.Game) bool {
	if round <= 1 {
		return false
	}
	for _, prev := range prevGames {
		if game.Pairing != nil && game.Pairing.Type == models.PairingGameWinners {
			if game.Pairing.ReferencesGame(slot, round-1, prev.SlotIndex) {
				return true
			}
			continue
		}
		if prev.SlotIndex == 2*game.SlotIndex+(slot-1) {
			return true
		}
	}
	return false
}

// placeAdvancersFromGroup проверяет, завершена ли группа, и если да —
// считает таблицу группы, пересеивает вышедших и расставляет их по слотам
// плей-офф согласно дескрипторам group_winners.
func (s *gameService) placeAdvancersFromGroup(ctx context.Context, tournament *models.Tournament, groupName string) error {
	groupGames, err := s.gameRepo.ListByTournament(ctx, tournament.ID, repositories.GameListFilter{GroupName: &groupName})
	if err != nil {
		return fmt.Errorf("list games of %s: %w", groupName, err)
	}
	if len(groupGames) == 0 {
		return nil
	}
	for _, g := range groupGames {
		if g.Status != models.GameStatusCompleted {
			// Группа ещё играет.
			return nil
		}
	}

	standings := groupStandings(groupGames)
	advancersCount := tournament.AdvancersPerGroup
	if advancersCount < 1 {
		advancersCount = 1
	}
	if advancersCount > len(standings) {
		advancersCount = len(standings)
	}

	advancerIDs := make([]int, 0, advancersCount)
	for _, st := range standings[:advancersCount] {
		advancerIDs = append(advancerIDs, st.MemberID)
	}
	members, err := s.memberRepo.ListByIDs(ctx, advancerIDs)
	if err != nil {
		return fmt.Errorf("load advancers of %s: %w", groupName, err)
	}
	byID := make(map[int]*models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	ordered := make([]*models.Member, 0, advancersCount)
	for _, id := range advancerIDs {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}

	// Вышедшие пересеиваются стратегией турнира, позиция в плей-офф
	// определяется местом после пересева, а не местом в группе.
	seeded := brackets.SortMembers(ordered, tournament.SeedingType)

	groupIndex := brackets.GroupIndex(groupName)
	if groupIndex < 0 {
		return fmt.Errorf("unrecognized group name %q", groupName)
	}

	waiting := models.GameStatusWaitingForGroups
	slotGames, err := s.gameRepo.ListByTournament(ctx, tournament.ID, repositories.GameListFilter{Status: &waiting})
	if err != nil {
		return fmt.Errorf("list playoff skeleton games: %w", err)
	}

	for i, member := range seeded {
		position := i + 1
		if err := s.placeAdvancer(ctx, slotGames, groupIndex, position, member.ID); err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "group completed, advancers placed",
			slog.Int("tournament_id", tournament.ID),
			slog.String("group", groupName),
			slog.Int("advancers", len(seeded)))
	}
	return nil
}

func (s *gameService) placeAdvancer(ctx context.Context, slotGames []*models.Game, groupIndex, position, memberID int) error {
	for _, game := range slotGames {
		if game.Pairing == nil {
			continue
		}
		// Уже расставлен (повторная отправка результата).
		if (game.Member1ID != nil && *game.Member1ID == memberID) ||
			(game.Member2ID != nil && *game.Member2ID == memberID) {
			return nil
		}
	}
	for _, game := range slotGames {
		if game.Pairing == nil {
			continue
		}
		if game.Member1ID == nil && game.Pairing.ReferencesGroupPosition(1, groupIndex, position) {
			return s.fillGroupSlot(ctx, game, 1, memberID)
		}
		if game.Member2ID == nil && game.Pairing.ReferencesGroupPosition(2, groupIndex, position) {
			return s.fillGroupSlot(ctx, game, 2, memberID)
		}
	}
	return nil
}

func (s *gameService) fillGroupSlot(ctx context.Context, game *models.Game, slot, memberID int) error {
	member1, member2 := game.Member1ID, game.Member2ID
	if slot == 1 {
		member1 = intPtr(memberID)
	} else {
		member2 = intPtr(memberID)
	}
	status := game.Status
	if member1 != nil && member2 != nil {
		status = models.GameStatusPending
	}
	err := s.tx.run(ctx, func(exec repositories.SQLExecutor) error {
		return s.gameRepo.UpdateMembers(ctx, exec, game.ID, member1, member2, status)
	})
	if err != nil {
		return fmt.Errorf("place advancer %d into game %d: %w", memberID, game.ID, err)
	}
	game.Member1ID = member1
	game.Member2ID = member2
	game.Status = status
	return nil
}

// groupStandings считает таблицу группы: победа 2 очка, поражение 1,
// сортировка по очкам, затем по числу побед.
func groupStandings(games []*models.Game) []models.GroupStanding {
	table := make(map[int]*models.GroupStanding)
	row := func(memberID int) *models.GroupStanding {
		if st, ok := table[memberID]; ok {
			return st
		}
		st := &models.GroupStanding{MemberID: memberID}
		table[memberID] = st
		return st
	}
	for _, game := range games {
		if game.Member1ID == nil || game.Member2ID == nil || game.WinnerID == nil {
			continue
		}
		winner := row(*game.WinnerID)
		winner.Points += 2
		winner.Wins++
		loserID := *game.Member1ID
		if loserID == *game.WinnerID {
			loserID = *game.Member2ID
		}
		row(loserID).Points++
	}
	standings := make([]models.GroupStanding, 0, len(table))
	for _, st := range table {
		standings = append(standings, *st)
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].MemberID < standings[j].MemberID
	})
	return standings
}

// maybeCompleteTournament переводит турнир в completed, когда все игры сыграны.
func (s *gameService) maybeCompleteTournament(ctx context.Context, tournament *models.Tournament) error {
	if tournament.Status == models.TournamentStatusCompleted {
		return nil
	}
	games, err := s.gameRepo.ListByTournament(ctx, tournament.ID, repositories.GameListFilter{})
	if err != nil {
		return err
	}
	if len(games) == 0 {
		return nil
	}
	for _, g := range games {
		if g.Status == models.GameStatusCompleted {
			continue
		}
		// Игры без обоих участников (автопроходы) сыграны быть не могут
		// и завершению турнира не мешают.
		if g.HasBothMembers() || g.Status == models.GameStatusWaitingForGroups {
			return nil
		}
	}
	err = s.tx.run(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.UpdateStatus(ctx, exec, tournament.ID, models.TournamentStatusCompleted)
	})
	if err != nil {
		return err
	}
	tournament.Status = models.TournamentStatusCompleted
	return nil
}

func (s *gameService) attachMembers(ctx context.Context, game *models.Game) {
	ids := make([]int, 0, 2)
	if game.Member1ID != nil {
		ids = append(ids, *game.Member1ID)
	}
	if game.Member2ID != nil {
		ids = append(ids, *game.Member2ID)
	}
	if len(ids) == 0 {
		return
	}
	members, err := s.memberRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logWarn(ctx, "failed to load game members", game, err)
		return
	}
	for _, m := range members {
		if game.Member1ID != nil && m.ID == *game.Member1ID {
			game.Member1 = m
		}
		if game.Member2ID != nil && m.ID == *game.Member2ID {
			game.Member2 = m
		}
	}
}

func (s *gameService) logWarn(ctx context.Context, msg string, game *models.Game, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg,
		slog.Int("game_id", game.ID),
		slog.Int("tournament_id", game.TournamentID),
		slog.Any("error", err))
}

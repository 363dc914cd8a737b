package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/morhendos/tenis-del-parque/bracket"
	"github.com/morhendos/tenis-del-parque/live"
	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
	"github.com/morhendos/tenis-del-parque/standings"
)

// GroupBracket is one group's full playoff state for display.
type GroupBracket struct {
	Group      int                       `json:"group"`
	Stage      models.PlayoffStage       `json:"stage"`
	Complete   bool                      `json:"complete"`
	Qualifiers []*models.QualifiedPlayer `json:"qualifiers"`
	Slots      []*models.PlayoffSlot     `json:"slots"`
	Matches    []*models.Match           `json:"matches"`
}

type FullBracket struct {
	LeagueID int             `json:"league_id"`
	Groups   []*GroupBracket `json:"groups"`
}

type PlayoffService interface {
	Initialize(ctx context.Context, leagueID int) (*FullBracket, error)
	Reconcile(ctx context.Context, leagueID, group int) error
	FullBracket(ctx context.Context, leagueID int) (*FullBracket, error)
}

type playoffService struct {
	db           *sql.DB
	leagueRepo   repositories.LeagueRepository
	playoffRepo  repositories.PlayoffRepository
	matchRepo    repositories.MatchRepository
	standingsSvc StandingsService
	hub          *live.Hub
	logger       *slog.Logger
}

func NewPlayoffService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	playoffRepo repositories.PlayoffRepository,
	matchRepo repositories.MatchRepository,
	standingsService StandingsService,
	hub *live.Hub,
	logger *slog.Logger,
) PlayoffService {
	return &playoffService{
		db:           db,
		leagueRepo:   leagueRepo,
		playoffRepo:  playoffRepo,
		matchRepo:    matchRepo,
		standingsSvc: standingsService,
		hub:          hub,
		logger:       logger,
	}
}

// Initialize freezes the current standings into qualifier snapshots, seeds
// the bracket slots, creates all quarterfinal matches and moves the league
// into its playoff phase, atomically.
func (s *playoffService) Initialize(ctx context.Context, leagueID int) (*FullBracket, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	if !league.PlayoffEnabled {
		return nil, ErrPlayoffsDisabled
	}
	if league.Status == models.LeagueStatusPlayoffs || league.Status == models.LeagueStatusCompleted {
		return nil, ErrPlayoffsAlreadyStarted
	}
	if league.Status != models.LeagueStatusActive {
		return nil, ErrLeagueNotActive
	}

	// Seeding follows pure performance order, never the status-tiered
	// presentation order the public table uses.
	table, err := s.standingsSvc.Table(ctx, leagueID, false)
	if err != nil {
		return nil, err
	}
	eligible := seedEligible(table)

	groups := league.PlayoffGroups
	if groups < 1 {
		groups = 1
	}
	if len(eligible) < bracket.BracketSize {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughPlayers, bracket.BracketSize, len(eligible))
	}
	if groups == 2 && len(eligible) < 2*bracket.BracketSize {
		groups = 1
	}

	if err := s.initializeTx(ctx, league, eligible, groups); err != nil {
		return nil, err
	}

	s.logger.Info("playoffs initialized",
		slog.Int("league_id", leagueID), slog.Int("groups", groups))

	full, err := s.FullBracket(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.BroadcastToLeague(leagueID, live.TypeBracketUpdated, full)
	}
	return full, nil
}

// seedEligible keeps the rows that may be seeded into a bracket: an active or
// confirmed registration with at least one completed match. Table order is
// preserved.
func seedEligible(table []standings.Row) []standings.Row {
	eligible := table[:0:0]
	for _, row := range table {
		if row.Stats.MatchesPlayed == 0 {
			continue
		}
		if row.Status != models.RegistrationActive && row.Status != models.RegistrationConfirmed {
			continue
		}
		eligible = append(eligible, row)
	}
	return eligible
}

func (s *playoffService) initializeTx(ctx context.Context, league *models.League, eligible []standings.Row, groups int) (txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed during playoff initialization",
					slog.Int("league_id", league.ID), slog.Any("error", rbErr))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				txErr = fmt.Errorf("failed to commit playoff initialization: %w", cErr)
			}
		}
	}()

	for group := 1; group <= groups; group++ {
		offset := (group - 1) * bracket.BracketSize
		qualifiers := make([]*models.QualifiedPlayer, 0, bracket.BracketSize)
		for seed := 1; seed <= bracket.BracketSize; seed++ {
			row := eligible[offset+seed-1]
			qualifiers = append(qualifiers, &models.QualifiedPlayer{
				LeagueID: league.ID,
				Group:    group,
				Seed:     seed,
				PlayerID: row.Player.ID,
				Position: row.Position,
				Snapshot: row.Stats,
			})
		}
		if txErr = s.playoffRepo.CreateQualifiers(ctx, tx, qualifiers); txErr != nil {
			if errors.Is(txErr, repositories.ErrPlayoffQualifierDupes) {
				txErr = ErrPlayoffsAlreadyStarted
			}
			return txErr
		}

		slots := bracket.SeedSlots(league.ID, group)
		if txErr = s.playoffRepo.CreateSlots(ctx, tx, slots); txErr != nil {
			if errors.Is(txErr, repositories.ErrPlayoffAlreadySeeded) {
				txErr = ErrPlayoffsAlreadyStarted
			}
			return txErr
		}

		pairs, err := bracket.QuarterfinalOpponents(qualifiers)
		if err != nil {
			txErr = err
			return txErr
		}
		for i, pair := range pairs {
			slot := slots[i]
			p2 := pair[1].PlayerID
			match := &models.Match{
				LeagueID:  league.ID,
				Season:    league.Season,
				Round:     1,
				Player1ID: pair[0].PlayerID,
				Player2ID: &p2,
				Status:    models.MatchStatusScheduled,
				Type:      models.MatchTypePlayoff,
				Playoff:   &models.PlayoffInfo{Group: group, Stage: models.StageQuarterfinal},
			}
			if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
				return txErr
			}
			slot.MatchID = &match.ID
			slot.State = models.SlotScheduled
			if txErr = s.playoffRepo.UpdateSlot(ctx, tx, slot); txErr != nil {
				return txErr
			}
		}
	}

	txErr = s.leagueRepo.UpdateStatus(ctx, tx, league.ID, models.LeagueStatusPlayoffs)
	return txErr
}

// Reconcile folds completed playoff matches into the group's slots and
// creates any next-stage matches that became due. It is idempotent and safe
// to call after every playoff result.
func (s *playoffService) Reconcile(ctx context.Context, leagueID, group int) error {
	completedLeague, err := s.reconcileTx(ctx, leagueID, group)
	if err != nil {
		return err
	}

	if s.hub != nil {
		if full, err := s.FullBracket(ctx, leagueID); err == nil {
			s.hub.BroadcastToLeague(leagueID, live.TypeBracketUpdated, full)
		}
		if completedLeague {
			s.hub.BroadcastToLeague(leagueID, live.TypePlayoffsCompleted, map[string]int{"league_id": leagueID})
		}
	}
	return nil
}

func (s *playoffService) reconcileTx(ctx context.Context, leagueID, group int) (completedLeague bool, txErr error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed during bracket reconcile",
					slog.Int("league_id", leagueID), slog.Any("error", rbErr))
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				txErr = fmt.Errorf("failed to commit bracket reconcile: %w", cErr)
			}
		}
	}()

	slots, txErr := s.playoffRepo.ListSlotsForUpdate(ctx, tx, leagueID, group)
	if txErr != nil {
		return false, txErr
	}
	if len(slots) == 0 {
		txErr = ErrPlayoffsNotStarted
		return false, txErr
	}

	matches, txErr := s.matchRepo.ListByLeagueTx(ctx, tx, leagueID, league.Season, repositories.MatchFilter{
		Type: models.MatchTypePlayoff,
	})
	if txErr != nil {
		return false, txErr
	}

	for _, m := range matches {
		if m.Playoff == nil || m.Playoff.Group != group {
			continue
		}
		if m.Status != models.MatchStatusCompleted || m.Result == nil {
			continue
		}
		slot := bracket.SlotByMatch(slots, m.ID)
		if slot == nil || slot.State == models.SlotCompleted {
			continue
		}
		updated, err := bracket.RecordWinner(slots, m.ID, m.Result.WinnerID)
		if err != nil {
			txErr = fmt.Errorf("failed to apply match %d to bracket: %w", m.ID, err)
			return false, txErr
		}
		if txErr = s.playoffRepo.UpdateSlot(ctx, tx, updated); txErr != nil {
			return false, txErr
		}
	}

	for _, due := range bracket.DueMatches(slots) {
		p2 := due.Player2ID
		match := &models.Match{
			LeagueID:  leagueID,
			Season:    league.Season,
			Round:     stageRound(due.Stage),
			Player1ID: due.Player1ID,
			Player2ID: &p2,
			Status:    models.MatchStatusScheduled,
			Type:      models.MatchTypePlayoff,
			Playoff:   &models.PlayoffInfo{Group: group, Stage: due.Stage},
		}
		if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
			return false, txErr
		}
		due.Slot.MatchID = &match.ID
		due.Slot.State = models.SlotScheduled
		if txErr = s.playoffRepo.UpdateSlot(ctx, tx, due.Slot); txErr != nil {
			return false, txErr
		}
		s.logger.Info("playoff match created",
			slog.Int("league_id", leagueID), slog.Int("group", group),
			slog.String("stage", string(due.Stage)), slog.Int("match_id", match.ID))
	}

	if !bracket.GroupComplete(slots) {
		return false, nil
	}

	// The league finishes when every seeded group is done.
	groups, txErr := s.playoffRepo.Groups(ctx, leagueID)
	if txErr != nil {
		return false, txErr
	}
	for _, g := range groups {
		if g == group {
			continue
		}
		other, err := s.playoffRepo.ListSlots(ctx, leagueID, g)
		if err != nil {
			txErr = err
			return false, txErr
		}
		if !bracket.GroupComplete(other) {
			return false, nil
		}
	}

	if league.Status == models.LeagueStatusCompleted {
		return false, nil
	}
	now := time.Now()
	if txErr = s.leagueRepo.SetPlayoffsCompleted(ctx, tx, leagueID, now); txErr != nil {
		return false, txErr
	}
	if txErr = s.leagueRepo.UpdateStatus(ctx, tx, leagueID, models.LeagueStatusCompleted); txErr != nil {
		return false, txErr
	}
	s.logger.Info("playoffs completed", slog.Int("league_id", leagueID))
	return true, nil
}

// FullBracket loads qualifiers, slots and matches for every group in
// parallel.
func (s *playoffService) FullBracket(ctx context.Context, leagueID int) (*FullBracket, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	groups, err := s.playoffRepo.Groups(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrPlayoffsNotStarted
	}

	full := &FullBracket{LeagueID: leagueID, Groups: make([]*GroupBracket, len(groups))}

	g, gCtx := errgroup.WithContext(ctx)
	for i, groupID := range groups {
		i, groupID := i, groupID
		g.Go(func() error {
			gb := &GroupBracket{Group: groupID}

			qualifiers, err := s.playoffRepo.ListQualifiers(gCtx, leagueID, groupID)
			if err != nil {
				return err
			}
			gb.Qualifiers = qualifiers

			slots, err := s.playoffRepo.ListSlots(gCtx, leagueID, groupID)
			if err != nil {
				return err
			}
			gb.Slots = slots
			gb.Stage = bracket.Stage(slots)
			gb.Complete = bracket.GroupComplete(slots)

			matches, err := s.matchRepo.ListByLeague(gCtx, leagueID, league.Season, repositories.MatchFilter{
				Type: models.MatchTypePlayoff,
			})
			if err != nil {
				return err
			}
			groupMatches := make([]*models.Match, 0, len(matches))
			for _, m := range matches {
				if m.Playoff != nil && m.Playoff.Group == groupID {
					groupMatches = append(groupMatches, m)
				}
			}
			gb.Matches = groupMatches

			full.Groups[i] = gb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bracket for league %d: %w", leagueID, err)
	}
	return full, nil
}

func stageRound(stage models.PlayoffStage) int {
	switch stage {
	case models.StageQuarterfinal:
		return 1
	case models.StageSemifinal:
		return 2
	default:
		return 3
	}
}

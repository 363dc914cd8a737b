package services

import (
	"context"
	"time"

	"github.com/morhendos/tenis-del-parque/models"
	"github.com/morhendos/tenis-del-parque/repositories"
)

// In-memory repository stubs for service tests that do not need a database.

type stubLeagueRepo struct {
	leagues map[int]*models.League
}

func (r *stubLeagueRepo) Create(ctx context.Context, league *models.League) error {
	r.leagues[league.ID] = league
	return nil
}

func (r *stubLeagueRepo) GetByID(ctx context.Context, id int) (*models.League, error) {
	league, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	return league, nil
}

func (r *stubLeagueRepo) List(ctx context.Context) ([]*models.League, error) {
	out := make([]*models.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, l)
	}
	return out, nil
}

func (r *stubLeagueRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.LeagueStatus) error {
	league, ok := r.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	league.Status = status
	return nil
}

func (r *stubLeagueRepo) SetPlayoffsCompleted(ctx context.Context, exec repositories.SQLExecutor, id int, completedAt time.Time) error {
	return nil
}

func (r *stubLeagueRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	return nil
}

type stubMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newStubMatchRepo(matches ...*models.Match) *stubMatchRepo {
	r := &stubMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
	for _, m := range matches {
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
		r.matches[m.ID] = m
	}
	return r
}

func (r *stubMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	r.matches[match.ID] = match
	return nil
}

func (r *stubMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (r *stubMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *stubMatchRepo) ListByLeague(ctx context.Context, leagueID int, season string, filter repositories.MatchFilter) ([]*models.Match, error) {
	out := make([]*models.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if m.LeagueID != leagueID || m.Season != season {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *stubMatchRepo) ListByLeagueTx(ctx context.Context, exec repositories.SQLExecutor, leagueID int, season string, filter repositories.MatchFilter) ([]*models.Match, error) {
	return r.ListByLeague(ctx, leagueID, season, filter)
}

func (r *stubMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result *models.MatchResult, elo1, elo2 *models.EloSnapshot) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusCompleted
	m.Result = result
	m.Elo1, m.Elo2 = elo1, elo2
	return nil
}

func (r *stubMatchRepo) ClearResult(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusScheduled
	m.Result = nil
	m.Elo1, m.Elo2 = nil, nil
	return nil
}

func (r *stubMatchRepo) UpdateStatus(ctx context.Context, id int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *stubMatchRepo) UpdateSchedule(ctx context.Context, id int, schedule models.Schedule) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Schedule = schedule
	return nil
}

func (r *stubMatchRepo) MaxRound(ctx context.Context, leagueID int, season string) (int, error) {
	max := 0
	for _, m := range r.matches {
		if m.LeagueID == leagueID && m.Season == season && m.Type == models.MatchTypeRegular && m.Round > max {
			max = m.Round
		}
	}
	return max, nil
}

type stubRegistrationRepo struct {
	regs []*models.Registration
}

func (r *stubRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	reg.ID = len(r.regs) + 1
	r.regs = append(r.regs, reg)
	return nil
}

func (r *stubRegistrationRepo) GetByPlayerAndLeague(ctx context.Context, playerID, leagueID int, season string) (*models.Registration, error) {
	for _, reg := range r.regs {
		if reg.PlayerID == playerID && reg.LeagueID == leagueID && reg.Season == season {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *stubRegistrationRepo) ListByLeague(ctx context.Context, leagueID int, season string) ([]*models.Registration, error) {
	out := make([]*models.Registration, 0, len(r.regs))
	for _, reg := range r.regs {
		if reg.LeagueID == leagueID && reg.Season == season {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *stubRegistrationRepo) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	for _, reg := range r.regs {
		if reg.ID == id {
			reg.Status = status
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (r *stubRegistrationRepo) UpdateStatsAndHistory(ctx context.Context, exec repositories.SQLExecutor, id int, stats models.Stats, history []models.MatchHistoryEntry) error {
	for _, reg := range r.regs {
		if reg.ID == id {
			reg.Stats = stats
			reg.MatchHistory = history
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

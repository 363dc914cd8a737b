package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Conflicts
	ErrEmailConflict        = errors.New("email address is already in use")
	ErrLeagueNameConflict   = errors.New("league name already exists for this season")
	ErrRegistrationConflict = errors.New("player is already registered for this league")

	// League lifecycle
	ErrLeagueInvalidStatus           = errors.New("invalid league status provided")
	ErrLeagueInvalidStatusTransition = errors.New("invalid league status transition")
	ErrLeagueNotAcceptingPlayers     = errors.New("league registration is closed")
	ErrLeagueNotActive               = errors.New("league is not in the active phase")

	// Match results
	ErrMatchNotScheduled     = errors.New("match is not in a state that accepts a result")
	ErrMatchAlreadyCompleted = errors.New("match result has already been recorded")
	ErrMatchNotCompleted     = errors.New("match has no recorded result")
	ErrWinnerNotInMatch      = errors.New("winner is not a participant of this match")
	ErrByeMatchImmutable     = errors.New("bye matches cannot be modified")

	// Rounds
	ErrRoundAlreadyExists = errors.New("matches already generated for this round")
	ErrRoundNotFinished   = errors.New("previous round still has unplayed matches")

	// Playoffs
	ErrPlayoffsDisabled       = errors.New("playoffs are not enabled for this league")
	ErrPlayoffsAlreadyStarted = errors.New("playoffs have already been initialized")
	ErrPlayoffsNotStarted     = errors.New("playoffs have not been initialized")
	ErrNotEnoughPlayers       = errors.New("not enough eligible players for playoffs")
)

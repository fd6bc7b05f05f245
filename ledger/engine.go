// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/poll-ledger/models"
	"github.com/danielhkuo/poll-ledger/record"
	"github.com/danielhkuo/poll-ledger/store"
)

// maxCommitAttempts bounds how often an update is reapplied when another
// process changes the poll between load and write
const maxCommitAttempts = 5

// Options configures an Engine. Zero values select the defaults: record
// limits from record.DefaultLimits, the flag close policy and
// slog.Default.
type Options struct {
	Limits      record.Limits
	ClosePolicy string
	Logger      *slog.Logger
}

// Engine validates and applies poll operations against a record store.
// Every operation on a poll is serialized with every other mutation of
// the same poll and commits at most one write.
type Engine struct {
	store  store.RecordStore
	limits record.Limits
	policy string
	logger *slog.Logger
	space  int
	locks  *lockTable
}

// NewEngine returns an Engine over s. It fails if s is nil, the limits
// are invalid, or the close policy is unknown.
func NewEngine(s store.RecordStore, opts Options) (*Engine, error) {
	if s == nil {
		return nil, errors.New("record store is required")
	}
	if opts.Limits == (record.Limits{}) {
		opts.Limits = record.DefaultLimits()
	}
	if err := opts.Limits.Validate(); err != nil {
		return nil, err
	}

	switch opts.ClosePolicy {
	case "":
		opts.ClosePolicy = models.ClosePolicyFlag
	case models.ClosePolicyFlag, models.ClosePolicyRelease:
	default:
		return nil, fmt.Errorf("unknown close policy %q", opts.ClosePolicy)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Engine{
		store:  s,
		limits: opts.Limits,
		policy: opts.ClosePolicy,
		logger: opts.Logger,
		space:  opts.Limits.Space(),
		locks:  newLockTable(),
	}, nil
}

// Limits returns the record limits the engine enforces
func (e *Engine) Limits() record.Limits {
	return e.limits
}

// ClosePolicy returns how ClosePoll terminates a poll
func (e *Engine) ClosePolicy() string {
	return e.policy
}

// CreatePoll allocates a new active poll with a zero tally.
func (e *Engine) CreatePoll(ctx context.Context, id, question string, candidates []string, creator string) (models.Poll, error) {
	if err := e.checkCreate(id, question, candidates, creator); err != nil {
		return models.Poll{}, err
	}

	poll := models.Poll{
		ID:         id,
		Creator:    creator,
		Question:   question,
		Candidates: slices.Clone(candidates),
		Tally:      make([]uint64, len(candidates)),
		Active:     true,
		Voters:     []string{},
	}

	data, err := record.Encode(poll)
	if err != nil {
		return models.Poll{}, err
	}

	address := record.Address(id)
	unlock := e.locks.lock(address)
	defer unlock()

	// A released poll leaves a marker; its id stays closed for good
	_, err = e.store.Load(ctx, record.ClosedAddress(id))
	if err == nil {
		return models.Poll{}, fmt.Errorf("%w: poll %s was closed", ErrAlreadyExists, id)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, fmt.Errorf("failed to check closed marker for poll %s: %w", id, err)
	}

	err = e.store.Allocate(ctx, address, e.space, data)
	if errors.Is(err, store.ErrExists) {
		return models.Poll{}, fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to allocate poll %s: %w", id, err)
	}

	e.logger.Info("poll created",
		"poll_id", id,
		"creator", creator,
		"candidates", len(candidates),
		"space", humanize.Bytes(uint64(e.space)),
	)
	return poll, nil
}

func (e *Engine) checkCreate(id, question string, candidates []string, creator string) error {
	if err := e.checkText("poll id", id, e.limits.MaxIDLen); err != nil {
		return err
	}
	if err := e.checkIdentity(creator); err != nil {
		return err
	}
	if err := e.checkText("question", question, e.limits.MaxQuestionLen); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w: at least one candidate is required", ErrInvalidInput)
	}
	if len(candidates) > e.limits.MaxCandidates {
		return fmt.Errorf("%w: %d candidates, max %d", ErrCapacityExceeded, len(candidates), e.limits.MaxCandidates)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if err := e.checkText("candidate name", c, e.limits.MaxCandidateLen); err != nil {
			return err
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate candidate %q", ErrInvalidInput, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func (e *Engine) checkText(field, value string, limit int) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(value) > limit {
		return fmt.Errorf("%w: %s is %d bytes, max %d", ErrInvalidInput, field, len(value), limit)
	}
	return nil
}

func (e *Engine) checkIdentity(identity string) error {
	return e.checkText("caller identity", identity, e.limits.MaxIdentityLen)
}

// AddCandidate appends name with a zero tally. Any caller may add
// candidates while the poll is active; the caller is only logged.
func (e *Engine) AddCandidate(ctx context.Context, id, name, caller string) (models.Poll, error) {
	if err := e.checkText("candidate name", name, e.limits.MaxCandidateLen); err != nil {
		return models.Poll{}, err
	}

	poll, err := e.update(ctx, id, func(p *models.Poll) error {
		if p.HasCandidate(name) {
			return fmt.Errorf("%w: %q", ErrDuplicateCandidate, name)
		}
		if len(p.Candidates) >= e.limits.MaxCandidates {
			return fmt.Errorf("%w: poll already has %d candidates", ErrCapacityExceeded, len(p.Candidates))
		}
		p.Candidates = append(p.Candidates, name)
		p.Tally = append(p.Tally, 0)
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	e.logger.Info("candidate added", "poll_id", id, "candidate", name, "caller", caller, "candidates", len(poll.Candidates))
	return poll, nil
}

// Vote records caller in the voter set and counts one vote for
// optionIndex. Both changes land in the same write.
func (e *Engine) Vote(ctx context.Context, id string, optionIndex int, caller string) (models.Poll, error) {
	if err := e.checkIdentity(caller); err != nil {
		return models.Poll{}, err
	}

	poll, err := e.update(ctx, id, func(p *models.Poll) error {
		if optionIndex < 0 || optionIndex >= len(p.Candidates) {
			return fmt.Errorf("%w: %d, poll has %d candidates", ErrInvalidOptionIndex, optionIndex, len(p.Candidates))
		}
		if p.HasVoted(caller) {
			return ErrAlreadyVoted
		}
		if len(p.Voters) >= e.limits.MaxVoters {
			return fmt.Errorf("%w: poll already has %d voters", ErrCapacityExceeded, len(p.Voters))
		}
		p.AddVoter(caller)
		p.Tally[optionIndex]++
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	e.logger.Info("vote recorded", "poll_id", id, "option_index", optionIndex, "voters", len(poll.Voters))
	return poll, nil
}

// ClosePoll terminates an active poll. Only the creator may close it.
// Under the flag policy the record stays with active=false; under the
// release policy the record is deleted and a closed marker keeps the id
// from being created again.
func (e *Engine) ClosePoll(ctx context.Context, id, caller string) (models.Poll, error) {
	if e.policy == models.ClosePolicyRelease {
		return e.release(ctx, id, caller)
	}

	closed, err := e.update(ctx, id, func(p *models.Poll) error {
		if p.Creator != caller {
			return fmt.Errorf("%w: only the creator can close poll %s", ErrUnauthorized, id)
		}
		p.Active = false
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	e.logger.Info("poll closed", "poll_id", id, "policy", e.policy, "total_votes", len(closed.Voters))
	return closed, nil
}

func (e *Engine) release(ctx context.Context, id, caller string) (models.Poll, error) {
	address := record.Address(id)
	unlock := e.locks.lock(address)
	defer unlock()

	poll, _, err := e.loadActive(ctx, id, address)
	if err != nil {
		return models.Poll{}, err
	}
	if poll.Creator != caller {
		return models.Poll{}, fmt.Errorf("%w: only the creator can close poll %s", ErrUnauthorized, id)
	}

	// Marker first: a failed release leaves the poll open but already
	// unrecreatable, and a retried close finds the marker in place
	marker := []byte(poll.ID)
	err = e.store.Allocate(ctx, record.ClosedAddress(id), len(marker), marker)
	if err != nil && !errors.Is(err, store.ErrExists) {
		return models.Poll{}, fmt.Errorf("failed to mark poll %s closed: %w", id, err)
	}

	reclaimed, err := e.store.Release(ctx, address)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, fmt.Errorf("%w: %s", ErrNotInitialized, id)
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to release poll %s: %w", id, err)
	}

	closed := poll.Clone()
	closed.Active = false
	e.logger.Info("poll closed", "poll_id", id, "policy", e.policy, "reclaimed", humanize.Bytes(uint64(reclaimed)))
	return closed, nil
}

// GetPoll returns the stored poll, active or closed.
func (e *Engine) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	address := record.Address(id)
	unlock := e.locks.rlock(address)
	defer unlock()

	poll, _, err := e.load(ctx, address)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return poll, err
}

// update runs fn on a copy of an active poll and commits the copy only if
// fn succeeds. If another process wrote the poll in between, the load and
// fn are repeated against the new contents.
func (e *Engine) update(ctx context.Context, id string, fn func(p *models.Poll) error) (models.Poll, error) {
	address := record.Address(id)
	unlock := e.locks.lock(address)
	defer unlock()

	for attempt := 1; ; attempt++ {
		poll, raw, err := e.loadActive(ctx, id, address)
		if err != nil {
			return models.Poll{}, err
		}

		next := poll.Clone()
		if err := fn(&next); err != nil {
			e.logger.Debug("poll operation rejected", "poll_id", id, "error", err)
			return models.Poll{}, err
		}

		err = e.commit(ctx, id, address, raw, next)
		if errors.Is(err, store.ErrConflict) && attempt < maxCommitAttempts {
			e.logger.Warn("poll changed during update, retrying", "poll_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return models.Poll{}, err
		}
		return next, nil
	}
}

func (e *Engine) loadActive(ctx context.Context, id, address string) (models.Poll, []byte, error) {
	poll, raw, err := e.load(ctx, address)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, nil, fmt.Errorf("%w: %s", ErrNotInitialized, id)
	}
	if err != nil {
		return models.Poll{}, nil, err
	}
	if !poll.Active {
		return models.Poll{}, nil, fmt.Errorf("%w: poll %s is closed", ErrNotInitialized, id)
	}
	return poll, raw, nil
}

// load returns the decoded poll and the bytes it was decoded from
func (e *Engine) load(ctx context.Context, address string) (models.Poll, []byte, error) {
	data, err := e.store.Load(ctx, address)
	if err != nil {
		return models.Poll{}, nil, err
	}
	poll, err := record.Decode(data)
	if err != nil {
		return models.Poll{}, nil, fmt.Errorf("failed to decode poll at %s: %w", address, err)
	}
	return poll, data, nil
}

// commit writes poll over prev, the bytes it was derived from
func (e *Engine) commit(ctx context.Context, id, address string, prev []byte, poll models.Poll) error {
	if err := e.limits.Fits(poll); err != nil {
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	}

	data, err := record.Encode(poll)
	if err != nil {
		return err
	}

	err = e.store.Store(ctx, address, prev, data)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotInitialized, id)
	case errors.Is(err, store.ErrTooLarge):
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	case err != nil:
		return fmt.Errorf("failed to store poll %s: %w", id, err)
	}
	return nil
}

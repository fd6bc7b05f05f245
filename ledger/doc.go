// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger applies poll operations to a record store.

An Engine owns validation, authorization and the per-poll lock. Each
operation loads the poll record, checks it against the caller's request,
mutates a copy and commits the copy with a single store write. A rejected
operation writes nothing.

	engine, err := ledger.NewEngine(store.NewMemoryStore(), ledger.Options{})
	poll, err := engine.CreatePoll(ctx, "fruit", "Best fruit?", []string{"apple", "banana"}, creator)
	poll, err = engine.Vote(ctx, "fruit", 1, voter)

Failures wrap one of the sentinel errors (ErrAlreadyVoted, ErrUnauthorized
and so on); Code returns the matching taxonomy name for API responses.

# Close Policy

With ClosePolicyFlag a closed poll keeps its record with active=false and
stays readable. With ClosePolicyRelease the record is deleted and later
reads return ErrNotFound.
*/
package ledger

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "slices"

// Close policy constants
const (
	ClosePolicyFlag    = "flag"
	ClosePolicyRelease = "release"
)

// Request types

type CreatePollRequest struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Candidates []string `json:"candidates"`
}

type AddCandidateRequest struct {
	Name string `json:"name"`
}

// Pointer so a missing field is distinguishable from index 0
type VoteRequest struct {
	OptionIndex *int `json:"option_index"`
}

// Response types

type ClosePollResponse struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
	Active bool   `json:"active"`
}

// Domain types

type Poll struct {
	ID         string   `json:"id"`
	Creator    string   `json:"creator"`
	Question   string   `json:"question"`
	Candidates []string `json:"candidates"`
	Tally      []uint64 `json:"tally"`
	Active     bool     `json:"active"`
	Voters     []string `json:"voters"` // sorted, unique
}

// HasCandidate reports whether name is already a candidate (exact match)
func (p *Poll) HasCandidate(name string) bool {
	return slices.Contains(p.Candidates, name)
}

// HasVoted reports whether identity is in the voter set
func (p *Poll) HasVoted(identity string) bool {
	_, found := slices.BinarySearch(p.Voters, identity)
	return found
}

// AddVoter inserts identity into the voter set, keeping it sorted. It
// reports false if identity was already present.
func (p *Poll) AddVoter(identity string) bool {
	pos, found := slices.BinarySearch(p.Voters, identity)
	if found {
		return false
	}
	p.Voters = slices.Insert(p.Voters, pos, identity)
	return true
}

// Clone returns a deep copy so mutations never alias a stored record
func (p Poll) Clone() Poll {
	p.Candidates = slices.Clone(p.Candidates)
	p.Tally = slices.Clone(p.Tally)
	p.Voters = slices.Clone(p.Voters)
	return p
}

// Result types

type CandidateResult struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Votes uint64 `json:"votes"`
	Rank  int    `json:"rank"` // 1-indexed, ties share a rank
}

type PollResults struct {
	ID         string            `json:"id"`
	Question   string            `json:"question"`
	Active     bool              `json:"active"`
	TotalVotes uint64            `json:"total_votes"`
	Rankings   []CandidateResult `json:"rankings"`
	Winners    []string          `json:"winners"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

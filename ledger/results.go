// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"sort"

	"github.com/danielhkuo/poll-ledger/models"
)

// Results ranks the candidates of a poll by vote count. Readable while
// the poll is active and after it is closed (flag policy).
func (e *Engine) Results(ctx context.Context, id string) (models.PollResults, error) {
	poll, err := e.GetPoll(ctx, id)
	if err != nil {
		return models.PollResults{}, err
	}
	return RankPoll(poll), nil
}

// RankPoll orders candidates by votes, most first. Equal counts share a
// rank and keep candidate order (1, 2, 2, 4).
func RankPoll(poll models.Poll) models.PollResults {
	results := models.PollResults{
		ID:       poll.ID,
		Question: poll.Question,
		Active:   poll.Active,
		Rankings: make([]models.CandidateResult, len(poll.Candidates)),
		Winners:  []string{},
	}

	for i, name := range poll.Candidates {
		results.Rankings[i] = models.CandidateResult{
			Index: i,
			Name:  name,
			Votes: poll.Tally[i],
		}
		results.TotalVotes += poll.Tally[i]
	}

	sort.SliceStable(results.Rankings, func(i, j int) bool {
		return results.Rankings[i].Votes > results.Rankings[j].Votes
	})

	for i := range results.Rankings {
		if i > 0 && results.Rankings[i].Votes == results.Rankings[i-1].Votes {
			results.Rankings[i].Rank = results.Rankings[i-1].Rank
		} else {
			results.Rankings[i].Rank = i + 1
		}
	}

	// No winner until someone votes
	if results.TotalVotes > 0 {
		top := results.Rankings[0].Votes
		for _, r := range results.Rankings {
			if r.Votes != top {
				break
			}
			results.Winners = append(results.Winners, r.Name)
		}
	}

	return results
}

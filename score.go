package main

import "strings"

// Scoring policy constants. Textual containment is necessary but not
// sufficient; an installment mismatch is a near-disqualifier; only a large
// positive margin survives a length or edition penalty. The magnitudes are
// tuned empirically, so tests pin today's behavior rather than derive it.
const (
	matchThreshold = 50
	supersetScore  = 90
	subsetScore    = 85
	sequelPenalty  = 100
	editionPenalty = 50

	// rejectedScore marks a candidate with no containment relation to the
	// query. It can never clear matchThreshold.
	rejectedScore = -1 << 16
)

// editionWords flag verbose variant listings ("Game: Deluxe Edition") that
// should lose to the plain title on storefront result pages.
var editionWords = []string{"deluxe", "gold", "ultimate", "bundle", "complete", "upgrade"}

// ScoreOptions selects the extra penalties used for browser-scraped result
// pages, where variant listings crowd out the base title.
type ScoreOptions struct {
	LengthPenalty  bool
	EditionPenalty bool
}

// browserScoreOptions is what the console storefront fetchers use.
var browserScoreOptions = ScoreOptions{LengthPenalty: true, EditionPenalty: true}

// ScoreCandidate rates how well a raw storefront result title matches the
// normalized user query. It returns the score and the candidate's normalized
// form. Candidates with no substring containment in either direction get
// rejectedScore and are excluded from consideration entirely.
func ScoreCandidate(query, rawTitle string, opts ScoreOptions) (int, string) {
	candidate := NormalizeTitle(rawTitle)

	var score int
	switch {
	case strings.Contains(candidate, query):
		// Extended form: "bioshock" inside "bioshock remastered".
		score = supersetScore
	case strings.Contains(query, candidate):
		// Truncated form of what the user typed.
		score = subsetScore
	default:
		return rejectedScore, candidate
	}

	queryNums := ExtractNumbers(query)
	candidateNums := ExtractNumbers(candidate)
	if len(queryNums) > 0 {
		// The user asked for a specific installment; a candidate that
		// names different numbers is the wrong sequel entry.
		if !queryNums.Intersects(candidateNums) {
			score -= sequelPenalty
		}
	} else if candidateNums.AnyGreaterThan(1) {
		// Base-title query, sequel candidate.
		score -= sequelPenalty
	}

	if opts.LengthPenalty {
		score -= len(candidate) - len(query)
	}
	if opts.EditionPenalty {
		for _, word := range editionWords {
			if strings.Contains(candidate, word) {
				score -= editionPenalty
				break
			}
		}
	}

	return score, candidate
}

// PickBest scores every title against the query and returns the index and
// score of the winner. Strictly higher scores win, so ties keep the first
// candidate encountered. The winner must still clear matchThreshold;
// otherwise ok is false and the source should report not-found.
func PickBest(query string, titles []string, opts ScoreOptions) (int, int, bool) {
	bestIdx := -1
	bestScore := rejectedScore
	for i, title := range titles {
		score, _ := ScoreCandidate(query, title, opts)
		if score == rejectedScore {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestScore < matchThreshold {
		return -1, bestScore, false
	}
	return bestIdx, bestScore, true
}

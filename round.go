package main

import "strings"

// Round is the process-wide round state machine. Like the Registry it is
// owned by the hub's run goroutine, which makes each publish/submit/reset
// atomic with respect to every other inbound event; that ordering is what
// guarantees a round has exactly one winner.
type Round struct {
	acceptedAnswer string
	active         bool
}

type submitResult int

const (
	// submitWon: first matching answer, the round is now over.
	submitWon submitResult = iota
	// submitIncorrect: evaluated while active, did not match.
	submitIncorrect
	// submitStale: arrived while no round was active.
	submitStale
)

func newRound() *Round {
	return &Round{}
}

// publish opens a round for question, accepting answer. Empty or
// whitespace-only input is rejected here rather than trusting the
// client-side form checks. Publishing while a round is already active
// replaces it outright.
func (rnd *Round) publish(question, answer string) bool {
	accepted := normalize(answer)
	if strings.TrimSpace(question) == "" || accepted == "" {
		return false
	}

	rnd.acceptedAnswer = accepted
	rnd.active = true

	return true
}

// submit evaluates text against the accepted answer. A win deactivates
// the round but keeps the accepted answer around so it can be included
// in the winner broadcast; only reset clears it.
func (rnd *Round) submit(text string) submitResult {
	if !rnd.active {
		return submitStale
	}

	if normalize(text) != rnd.acceptedAnswer {
		return submitIncorrect
	}

	rnd.active = false

	return submitWon
}

// reset returns the round to its initial state. Authorization is the
// caller's problem; the state machine itself has no notion of roles.
func (rnd *Round) reset() {
	rnd.acceptedAnswer = ""
	rnd.active = false
}

func (rnd *Round) answer() string {
	return rnd.acceptedAnswer
}

func (rnd *Round) isActive() bool {
	return rnd.active
}

// normalize folds answers (and the reserved host name) to lowercase and
// strips outer whitespace. Internal whitespace is left alone.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package main

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims outer whitespace", in: "  Paris ", want: "paris"},
		{name: "lowercases", in: "PARIS", want: "paris"},
		{name: "already normalized", in: "paris", want: "paris"},
		{name: "internal whitespace untouched", in: " New  York ", want: "new  york"},
		{name: "whitespace only", in: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalize(tc.in); got != tc.want {
				t.Fatalf("normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPublishRejectsEmptyInput(t *testing.T) {
	cases := []struct {
		name     string
		question string
		answer   string
		want     bool
	}{
		{name: "both fields present", question: "Capital of France?", answer: "Paris", want: true},
		{name: "empty question", question: "", answer: "Paris", want: false},
		{name: "empty answer", question: "Capital of France?", answer: "", want: false},
		{name: "whitespace question", question: "   ", answer: "Paris", want: false},
		{name: "whitespace answer", question: "Capital of France?", answer: " \t ", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rnd := newRound()
			if got := rnd.publish(tc.question, tc.answer); got != tc.want {
				t.Fatalf("publish(%q, %q) = %v, want %v", tc.question, tc.answer, got, tc.want)
			}
			if rnd.isActive() != tc.want {
				t.Fatalf("active = %v after publish returning %v", rnd.isActive(), tc.want)
			}
		})
	}
}

func TestPublishStoresNormalizedAnswer(t *testing.T) {
	rnd := newRound()
	if !rnd.publish("Capital of France?", "  PARIS ") {
		t.Fatal("publish rejected valid input")
	}
	if got := rnd.answer(); got != "paris" {
		t.Fatalf("accepted answer = %q, want %q", got, "paris")
	}
}

func TestSubmitFirstMatchWins(t *testing.T) {
	rnd := newRound()
	rnd.publish("Capital of France?", "Paris")

	if got := rnd.submit("london"); got != submitIncorrect {
		t.Fatalf("wrong answer: got %v, want submitIncorrect", got)
	}
	if !rnd.isActive() {
		t.Fatal("round deactivated by an incorrect answer")
	}

	if got := rnd.submit("  PARIS  "); got != submitWon {
		t.Fatalf("correct answer: got %v, want submitWon", got)
	}
	if rnd.isActive() {
		t.Fatal("round still active after a win")
	}

	// Accepted answer survives the win so the broadcast can include it.
	if got := rnd.answer(); got != "paris" {
		t.Fatalf("accepted answer cleared by win: %q", got)
	}

	// A second correct answer is late.
	if got := rnd.submit("paris"); got != submitStale {
		t.Fatalf("late answer: got %v, want submitStale", got)
	}
}

func TestSubmitWhileIdleIsStale(t *testing.T) {
	rnd := newRound()
	if got := rnd.submit("paris"); got != submitStale {
		t.Fatalf("got %v, want submitStale", got)
	}
}

func TestPublishWhileActiveReplacesRound(t *testing.T) {
	rnd := newRound()
	rnd.publish("Capital of France?", "Paris")
	rnd.publish("Capital of Peru?", "Lima")

	if got := rnd.submit("paris"); got != submitIncorrect {
		t.Fatalf("old answer after replacement: got %v, want submitIncorrect", got)
	}
	if got := rnd.submit("lima"); got != submitWon {
		t.Fatalf("new answer: got %v, want submitWon", got)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	rnd := newRound()
	rnd.publish("Capital of France?", "Paris")

	rnd.reset()
	if rnd.isActive() || rnd.answer() != "" {
		t.Fatalf("after reset: active=%v answer=%q", rnd.isActive(), rnd.answer())
	}

	rnd.reset()
	if rnd.isActive() || rnd.answer() != "" {
		t.Fatalf("after double reset: active=%v answer=%q", rnd.isActive(), rnd.answer())
	}

	// The old answer grants nothing once the round is gone.
	if got := rnd.submit("paris"); got != submitStale {
		t.Fatalf("post-reset submission: got %v, want submitStale", got)
	}
}

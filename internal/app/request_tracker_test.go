package app_test

import (
	"testing"

	"trivia-quiz-service/internal/app"
)

func TestRequestTrackerSupersedes(t *testing.T) {
	var tracker app.RequestTracker

	first := tracker.Begin()
	if !tracker.IsCurrent(first) {
		t.Fatalf("expected the first token to be current")
	}
	second := tracker.Begin()
	if tracker.IsCurrent(first) || !tracker.IsCurrent(second) {
		t.Fatalf("expected only the newest token to be current")
	}
	tracker.Cancel()
	if tracker.IsCurrent(second) {
		t.Fatalf("expected cancel to supersede outstanding tokens")
	}
}

package engine

// Event types emitted by the engine. Payloads are flat string-keyed maps.
const (
	// EventReviewCompleted fires after a review is persisted.
	// Payload: item_id, user_id, session_id, algorithm, difficulty,
	// next_due, is_leech.
	EventReviewCompleted = "review.completed"

	// EventReviewDue fires when due reviews are announced for a user
	// (emitted by the reminder, not by the scheduler itself).
	// Payload: user_id, due_count.
	EventReviewDue = "review.due"

	// EventSessionEnded fires when a review session is finalized.
	// Payload: session_id, user_id, reviewed_count.
	EventSessionEnded = "session.ended"
)

// emit delivers an event to the configured sink without blocking the
// caller. Events are best-effort: no sink, no delivery, no error.
func (s *Scheduler) emit(eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	go s.events.Emit(eventType, payload)
}

package testutil

import "github.com/juricore/juricore/core"

// Drain collects every event from the channel until it closes.
func Drain(events <-chan core.StreamEvent) []core.StreamEvent {
	var out []core.StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

// EventsOfKind filters events by kind, preserving order.
func EventsOfKind(events []core.StreamEvent, t core.EventKind) []core.StreamEvent {
	var out []core.StreamEvent
	for _, ev := range events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// FinalAnswer returns the answer text from the last answer-stage status event,
// or "" when the stream never completed.
func FinalAnswer(events []core.StreamEvent) string {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Type != core.EventStatus {
			continue
		}
		if stage, _ := ev.Data["stage"].(string); stage == "answer" {
			answer, _ := ev.Data["answer"].(string)
			return answer
		}
	}
	return ""
}

// SeqStrictlyIncreasing reports whether the events carry strictly increasing
// sequence numbers.
func SeqStrictlyIncreasing(events []core.StreamEvent) bool {
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			return false
		}
	}
	return true
}

// internal/reveal/scheduler.go
// Word-by-word disclosure of a finalized response. Purely a
// presentation effect: the full text has already arrived before a
// reveal starts.
package reveal

import (
	"context"
	"time"
	"unicode"
)

// Snapshot is one frame of a reveal: the currently visible prefix of
// the full text. The final frame carries the complete text with Done
// set; committing it to the permanent transcript is the caller's job.
type Snapshot struct {
	Prefix string
	Done   bool
}

// Scheduler builds reveal runs with a fixed tick cadence
type Scheduler struct {
	tick         time.Duration
	wordsPerTick int
}

// NewScheduler creates a scheduler revealing wordsPerTick words every
// tick
func NewScheduler(tick time.Duration, wordsPerTick int) *Scheduler {
	if tick <= 0 {
		tick = 30 * time.Millisecond
	}
	if wordsPerTick < 1 {
		wordsPerTick = 1
	}
	return &Scheduler{tick: tick, wordsPerTick: wordsPerTick}
}

// Run is one in-progress reveal. The snapshot channel closes when the
// reveal completes or is cancelled; after Cancel the tick schedule
// stops and no further snapshot is emitted.
type Run struct {
	snapshots chan Snapshot
	cancel    context.CancelFunc
}

// Snapshots returns the frame channel
func (r *Run) Snapshots() <-chan Snapshot {
	return r.snapshots
}

// Cancel stops the tick schedule. Whether the partially revealed
// prefix is kept or discarded is the caller's choice, not ours.
func (r *Run) Cancel() {
	r.cancel()
}

// Start begins revealing fullText. An empty text completes immediately
// with a single empty Done frame and zero word ticks.
func (s *Scheduler) Start(fullText string) *Run {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Run{snapshots: make(chan Snapshot), cancel: cancel}
	go s.run(ctx, fullText, r.snapshots)
	return r
}

func (s *Scheduler) run(ctx context.Context, fullText string, out chan<- Snapshot) {
	defer close(out)

	ends := wordEnds(fullText)
	if len(ends) == 0 {
		select {
		case out <- Snapshot{Prefix: fullText, Done: true}:
		case <-ctx.Done():
		}
		return
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	shown := 0
	for shown < len(ends) {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		shown += s.wordsPerTick
		if shown > len(ends) {
			shown = len(ends)
		}

		snap := Snapshot{Prefix: fullText[:ends[shown-1]]}
		if shown == len(ends) {
			// the final frame is the full text verbatim, trailing
			// whitespace included
			snap.Prefix = fullText
			snap.Done = true
		}

		// a cancelled run emits nothing more, even when the receiver
		// is ready at the same instant
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case out <- snap:
		}
	}
}

// wordEnds returns the byte offset just past each whitespace-delimited
// word, so prefixes preserve the original spacing of the text.
func wordEnds(s string) []int {
	var ends []int
	inWord := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			if inWord {
				ends = append(ends, i)
				inWord = false
			}
		} else {
			inWord = true
		}
	}
	if inWord {
		ends = append(ends, len(s))
	}
	return ends
}

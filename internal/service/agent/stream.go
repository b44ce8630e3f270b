package agent

import "context"

// streamBufferSize bounds the merged output channel. Producers block rather
// than drop events when the consumer falls behind; event production is
// bounded by generation throughput, so a small buffer is enough.
const streamBufferSize = 16

// Merge fans the stage-event and token-event channels into out, closing out
// when done. Stage events win ties so a stage label is always observed
// before the tokens of that stage's work. After both inputs close, exactly
// one Done event is appended; when ctx is canceled the merge stops without
// it, since the consumer is gone.
func Merge(ctx context.Context, stages, tokens <-chan Event, out chan<- Event) {
	defer close(out)

	forward := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for stages != nil || tokens != nil {
		select {
		case ev, ok := <-stages:
			if !ok {
				stages = nil
				continue
			}
			if !forward(ev) {
				return
			}
			continue
		default:
		}

		select {
		case ev, ok := <-stages:
			if !ok {
				stages = nil
				continue
			}
			if !forward(ev) {
				return
			}
		case ev, ok := <-tokens:
			if !ok {
				tokens = nil
				continue
			}
			if !forward(ev) {
				return
			}
		case <-ctx.Done():
			return
		}
	}

	select {
	case out <- Event{Kind: EventDone}:
	case <-ctx.Done():
	}
}

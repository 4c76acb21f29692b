package app

import (
	"sync"

	"lesson-quiz-service/internal/domain"
)

// rankingFeeds fans ranking updates out to spectator subscribers, one
// subscriber set per quiz.
type rankingFeeds struct {
	mu    sync.RWMutex
	feeds map[string]map[chan domain.Ranking]struct{}
}

func newRankingFeeds() *rankingFeeds {
	return &rankingFeeds{feeds: make(map[string]map[chan domain.Ranking]struct{})}
}

func (f *rankingFeeds) subscribe(quizID string) (<-chan domain.Ranking, func()) {
	ch := make(chan domain.Ranking, 8)

	f.mu.Lock()
	subs, ok := f.feeds[quizID]
	if !ok {
		subs = make(map[chan domain.Ranking]struct{})
		f.feeds[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if subs, ok := f.feeds[quizID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(f.feeds, quizID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *rankingFeeds) hasSubscribers(quizID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.feeds[quizID]) > 0
}

func (f *rankingFeeds) broadcast(quizID string, ranking domain.Ranking) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for ch := range f.feeds[quizID] {
		select {
		case ch <- ranking:
		default:
			// Drop the stale update so a slow client never blocks broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- ranking
		}
	}
}

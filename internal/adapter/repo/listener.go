package repo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/domain"
)

const notifyChannel = "video_jobs_changed"

// Feed turns the video_jobs_changed NOTIFY stream into per-job subscriptions.
// Delivery is best-effort: a slow subscriber misses intermediate updates and
// recovers through polling, which is the contract of domain.JobFeed.
type Feed struct {
	listener *pq.Listener
	logger   zerolog.Logger

	mu   sync.Mutex
	subs map[string]map[chan domain.View]struct{}
}

// NewFeed opens a dedicated LISTEN connection. A pq.Listener reconnects by
// itself; subscribers simply see a gap and catch up on the next poll.
func NewFeed(databaseURL string, logger zerolog.Logger) (*Feed, error) {
	listener := pq.NewListener(databaseURL, 2*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn().Err(err).Int("event", int(event)).Msg("feed: listener event")
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return nil, err
	}

	f := &Feed{
		listener: listener,
		logger:   logger,
		subs:     make(map[string]map[chan domain.View]struct{}),
	}
	go f.run()
	return f, nil
}

func (f *Feed) run() {
	for notification := range f.listener.Notify {
		if notification == nil {
			// nil marks a reconnect; nothing to deliver.
			continue
		}

		var view domain.View
		if err := json.Unmarshal([]byte(notification.Extra), &view); err != nil {
			f.logger.Warn().Err(err).Msg("feed: malformed notification payload")
			continue
		}
		f.publish(view)
	}
}

func (f *Feed) publish(view domain.View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[view.ID] {
		select {
		case ch <- view:
		default:
		}
	}
}

// Subscribe registers for updates of one job id until ctx is done.
func (f *Feed) Subscribe(ctx context.Context, jobID string) (<-chan domain.View, error) {
	ch := make(chan domain.View, 8)

	f.mu.Lock()
	if f.subs[jobID] == nil {
		f.subs[jobID] = make(map[chan domain.View]struct{})
	}
	f.subs[jobID][ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs[jobID], ch)
		if len(f.subs[jobID]) == 0 {
			delete(f.subs, jobID)
		}
		f.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Close stops the LISTEN connection.
func (f *Feed) Close() error {
	return f.listener.Close()
}

var _ domain.JobFeed = (*Feed)(nil)

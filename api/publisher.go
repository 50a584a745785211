package api

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"boardkit/domain"
)

// Change events are published off the request path by a small worker pool.
// Publishing is best-effort: a queue outage is logged, never surfaced to the
// client whose mutation already succeeded.
var (
	publisherOnce  sync.Once
	eventCh        chan domain.Event
	publisherStore Storage
	publisherLog   *log.Logger
	publisherWG    sync.WaitGroup
	publishTimeout time.Duration
	publisherBG    = context.Background()
)

func initEventPublisher(store Storage, logger *log.Logger) {
	publisherOnce.Do(func() {
		if store == nil {
			panic("storage is required")
		}
		if logger == nil {
			panic("logger is required")
		}
		publisherStore = store
		publisherLog = logger
		publishTimeout = envDur("EVENT_PUBLISH_TIMEOUT", 10*time.Second)

		workers := envInt("EVENT_WORKERS", 4)
		eventCh = make(chan domain.Event, envInt("EVENT_BUFFER", 1024))
		for i := 0; i < workers; i++ {
			publisherWG.Add(1)
			go eventWorker(eventCh)
		}
		publisherLog.Infof("event publisher started, workers: %d, buffer: %d", workers, cap(eventCh))
	})
}

// shutdownEventPublisher stops worker goroutines and clears shared state. It
// is intended for tests.
func shutdownEventPublisher() {
	if eventCh != nil {
		close(eventCh)
		eventCh = nil
	}
	publisherWG.Wait()
	publisherStore = nil
	publisherLog = nil
	publishTimeout = 0
	publisherOnce = sync.Once{}
	publisherWG = sync.WaitGroup{}
}

func eventWorker(ch <-chan domain.Event) {
	defer publisherWG.Done()
	for event := range ch {
		deliverEvent(event)
	}
}

func deliverEvent(event domain.Event) {
	ctx, cancel := context.WithTimeout(publisherBG, publishTimeout)
	err := publisherStore.PublishEvent(ctx, event)
	cancel()
	if err != nil && publisherLog != nil {
		publisherLog.Errorf("event publish failed, err: %v, user: %s, entity: %s, action: %s",
			err, event.UserID, event.Entity, event.Action)
	}
}

// publishChange hands the event to the pool, falling back to an inline
// delivery when the buffer is saturated.
func publishChange(event domain.Event) {
	if eventCh == nil {
		return
	}
	event.Timestamp = nextTimestamp()

	select {
	case eventCh <- event:
	default:
		if publisherLog != nil {
			publisherLog.Warn("event buffer saturated; publishing inline")
		}
		deliverEvent(event)
	}
}

package bus

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/observability/log"
)

type subscription struct {
	id      string
	topic   string
	kind    ability.HintKind
	handler Handler
	mu      sync.Mutex
	active  bool
	cancel  func()
}

func (s *subscription) ID() string             { return s.id }
func (s *subscription) Topic() string          { return s.topic }
func (s *subscription) Kind() ability.HintKind { return s.kind }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.mu.Unlock()
	s.cancel()
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// topic -> subID -> subscription
	handlers  map[string]map[string]*subscription
	filters   []Filter
	metrics   Metrics
	observers map[Observer]struct{}
	logger    log.Log
}

// New creates an empty bus. Filters run before every delivery.
func New(logger log.Log, filters ...Filter) HintBus {
	if logger == nil {
		logger = log.Provide()
	}
	return &inMemoryBus{
		handlers:  make(map[string]map[string]*subscription),
		filters:   filters,
		observers: make(map[Observer]struct{}),
		logger:    logger.Named("hints"),
	}
}

func (b *inMemoryBus) Publish(topic string, hint ability.Hint) error {
	b.mu.RLock()
	filters := b.filters
	b.mu.RUnlock()
	for _, f := range filters {
		if !f(hint) {
			b.observe(func() { b.metrics.DroppedByFilters++ })
			return nil
		}
	}

	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.handlers[topic])+len(b.handlers[AllTopics]))
	for _, s := range b.handlers[topic] {
		targets = append(targets, s)
	}
	if topic != AllTopics {
		for _, s := range b.handlers[AllTopics] {
			targets = append(targets, s)
		}
	}
	observers := make([]Observer, 0, len(b.observers))
	for o := range b.observers {
		observers = append(observers, o)
	}
	b.mu.RUnlock()

	for _, o := range observers {
		o.OnPublish(topic, hint)
	}

	var errs []error
	delivered := 0
	for _, s := range targets {
		if s.kind != "" && s.kind != hint.Kind {
			continue
		}
		delivered++
		if err := s.handler(hint); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)

	b.observe(func() {
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		b.metrics.Errors += uint64(len(errs))
	})
	for _, o := range observers {
		o.OnDelivered(topic, delivered, err)
	}
	return err
}

func (b *inMemoryBus) observe(update func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.observers) > 0 {
		update()
	}
}

func (b *inMemoryBus) Subscribe(topic string, kind ability.HintKind, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string]*subscription)
	}
	id := uuid.NewString()
	s := &subscription{id: id, topic: topic, kind: kind, handler: handler, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.handlers[topic]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.handlers, topic)
			}
		}
	}
	b.handlers[topic][id] = s
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) Emitter(topic string) ability.HintSink {
	return ability.HintFunc(func(h ability.Hint) {
		if err := b.Publish(topic, h); err != nil {
			b.logger.Warn("hint handler failed",
				log.String("topic", topic),
				log.String("kind", string(h.Kind)),
				log.Error(err),
			)
		}
	})
}

func (b *inMemoryBus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

func (b *inMemoryBus) Topics() []TopicInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TopicInfo, 0, len(b.handlers))
	for name, subs := range b.handlers {
		out = append(out, TopicInfo{Name: name, Subs: len(subs)})
	}
	slices.SortFunc(out, func(x, y TopicInfo) int { return cmp.Compare(x.Name, y.Name) })
	return out
}

package bus

import "github.com/zeusync/bending/internal/core/ability"

// AllTopics subscribes a handler to every topic.
const AllTopics = "*"

// HintBus is a thread-safe, in-process pub/sub bus for presentation hints.
//
// Topics are world names. Delivery is synchronous in the publisher's
// goroutine, so handlers must hand work off instead of blocking the tick.
// Handler errors are joined and returned from Publish.
type HintBus interface {
	// Publish delivers hint to subscribers of topic and of AllTopics whose
	// kind filter matches.
	Publish(topic string, hint ability.Hint) error
	// Subscribe registers handler for hints of kind on topic. An empty kind
	// matches every kind.
	Subscribe(topic string, kind ability.HintKind, handler Handler) (Subscription, error)
	// Unsubscribe cancels sub. Nil is ignored.
	Unsubscribe(sub Subscription) error
	// Emitter binds the bus to a topic as an ability.HintSink.
	Emitter(topic string) ability.HintSink

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	Metrics() Metrics
	Topics() []TopicInfo
}

type (
	Handler func(hint ability.Hint) error
	// Filter drops a hint before delivery when it returns false.
	Filter func(hint ability.Hint) bool
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	Topic() string
	Kind() ability.HintKind
	IsActive() bool
	Cancel() error
}

// Observer receives delivery callbacks. Observers should return quickly.
type Observer interface {
	OnPublish(topic string, hint ability.Hint)
	OnDelivered(topic string, handlers int, err error)
}

// Metrics is only updated while at least one observer is registered.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
}

type TopicInfo struct {
	Name string
	Subs int
}

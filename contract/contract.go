//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"relay-lab/domain/event"
)

// EventSink is one connection's outbound channel. Implementations must not
// block: a slow consumer is the transport's problem, never the relay's.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IHub is the broadcast primitive the transport layer provides: connections
// bind a sink, join chat groups, and events fan out to groups or to everyone.
type IHub interface {
	Bind(connectionID string, sink EventSink)
	Release(connectionID string)
	Join(connectionID, chatID string)
	SendTo(ctx context.Context, connectionID string, e event.Event)
	Broadcast(ctx context.Context, chatID string, e event.Event)
	BroadcastExcept(ctx context.Context, chatID, exceptConnectionID string, e event.Event)
	BroadcastAll(ctx context.Context, e event.Event)
	ActiveConnections() int
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker lifecycle
// events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

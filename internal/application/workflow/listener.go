package workflow

import (
	"go.uber.org/zap"

	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

// LoggingListener writes machine callbacks to a zap logger
type LoggingListener[S fsm.State, E fsm.Event] struct {
	logger *zap.Logger
}

// NewLoggingListener creates a logging listener
func NewLoggingListener[S fsm.State, E fsm.Event](logger *zap.Logger) *LoggingListener[S, E] {
	return &LoggingListener[S, E]{logger: logger}
}

// StateChanged implements fsm.Listener
func (l *LoggingListener[S, E]) StateChanged(from, to S, event E) {
	l.logger.Info("FSM state changed",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("event", event.String()))
}

// EventNotAccepted implements fsm.Listener
func (l *LoggingListener[S, E]) EventNotAccepted(state S, event E, reason string) {
	l.logger.Error("FSM event not accepted",
		zap.String("state", state.String()),
		zap.String("event", event.String()),
		zap.String("reason", reason))
}

// ContextErrorSet implements fsm.Listener
func (l *LoggingListener[S, E]) ContextErrorSet(reason string) {
	l.logger.Info("FSM context error set", zap.String("error", reason))
}

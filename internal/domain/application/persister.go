package application

import (
	"context"
	"fmt"

	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

// StatusWriter durably records the status of a stored application
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// StatusPersister restores machines from an application's status and writes new
// statuses back. It is the only code path that changes Application.Status.
type StatusPersister struct {
	writer StatusWriter
}

// NewStatusPersister creates a persister backed by writer
func NewStatusPersister(writer StatusWriter) *StatusPersister {
	return &StatusPersister{writer: writer}
}

// Read seeds a machine with the stored status and a context bound to the application
func (p *StatusPersister) Read(ctx context.Context, app *Application) (fsm.Seed[Status, *Application], error) {
	if app == nil {
		return fsm.Seed[Status, *Application]{}, fmt.Errorf("application is required")
	}
	if !app.status.IsValid() {
		return fsm.Seed[Status, *Application]{}, fmt.Errorf("application %d has invalid status %q", app.ID, string(app.status))
	}
	return fsm.Seed[Status, *Application]{
		State:   app.status,
		Context: fsm.NewContext(app),
	}, nil
}

// Write stores status and then applies it to the in-memory application
func (p *StatusPersister) Write(ctx context.Context, app *Application, status Status) error {
	if err := p.writer.UpdateStatus(ctx, app.ID, status); err != nil {
		return fmt.Errorf("failed to write status %s for application %d: %w", status, app.ID, err)
	}
	app.status = status
	return nil
}

// Snapshot copies the application so a failed send can restore its status and any
// fields the transition actions changed
func (p *StatusPersister) Snapshot(app *Application) func() {
	if app == nil {
		return func() {}
	}
	saved := *app
	return func() { *app = saved }
}

// Verify interface compliance
var (
	_ fsm.Persister[Status, *Application] = (*StatusPersister)(nil)
	_ fsm.Snapshotter[*Application]       = (*StatusPersister)(nil)
)

package fsm

type testState string

func (s testState) String() string { return string(s) }

const (
	stateDraft    testState = "DRAFT"
	stateReady    testState = "READY"
	stateDone     testState = "DONE"
	stateOrphaned testState = "ORPHANED"
)

type testEvent string

func (e testEvent) String() string { return string(e) }

func (e testEvent) Type() EventType {
	if e == eventTick {
		return EventTypeTimer
	}
	return EventTypeEvent
}

const (
	eventPrepare testEvent = "PREPARE"
	eventFinish  testEvent = "FINISH"
	eventReset   testEvent = "RESET"
	eventTick    testEvent = "TICK"
)

type subject struct {
	ready   bool
	actions []string
}

type recordingListener struct {
	changes     []string
	rejections  []string
	contextErrs []string
}

func (l *recordingListener) StateChanged(from, to testState, event testEvent) {
	l.changes = append(l.changes, from.String()+"->"+to.String()+":"+event.String())
}

func (l *recordingListener) EventNotAccepted(state testState, event testEvent, reason string) {
	l.rejections = append(l.rejections, state.String()+":"+event.String()+":"+reason)
}

func (l *recordingListener) ContextErrorSet(reason string) {
	l.contextErrs = append(l.contextErrs, reason)
}

func readyGuard(c *Context[*subject]) bool {
	if !c.Entity().ready {
		c.SetError("subject is not ready")
		return false
	}
	return true
}

func record(name string) Action[*subject] {
	return func(c *Context[*subject]) error {
		c.Entity().actions = append(c.Entity().actions, name)
		return nil
	}
}

func testTable() *Table[testState, testEvent, *subject] {
	b := NewBuilder[testState, testEvent, *subject]().
		Initial(stateDraft).
		States(stateDraft, stateReady, stateDone).
		End(stateDone)

	b.Configure(stateDraft).
		PermitIf(eventPrepare, stateReady, readyGuard, record("prepare"))

	b.Configure(stateReady).
		PermitIf(eventFinish, stateDone, func(c *Context[*subject]) bool { return false }, record("finish")).
		Permit(eventReset, stateDraft, record("reset"))

	return b.MustBuild()
}

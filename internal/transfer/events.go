package transfer

// Event is the interface implemented by all transfer engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// TransferStarted is emitted once the plan is built, before the first copy.
type TransferStarted struct {
	ID          string
	Mode        Mode
	Files       int
	Bytes       int64
	Destination string
}

func (TransferStarted) isEvent() {}

// TransferProgress is emitted at most once per progress interval while a file
// is in flight, and always at file boundaries.
type TransferProgress struct {
	ID          string
	Progress    Progress
	CurrentFile string
	BytesCopied int64
}

func (TransferProgress) isEvent() {}

// FileFailed is emitted for every entry that lands in Outcome.Failed.
type FileFailed struct {
	ID      string
	Failure Failure
}

func (FileFailed) isEvent() {}

// TransferComplete is emitted exactly once per Execute call that got past
// precondition checks.
type TransferComplete struct {
	ID      string
	Outcome *Outcome
}

func (TransferComplete) isEvent() {}

package pane

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/joe/dual-pane/internal/transfer"
)

// UpdateBufferSize bounds the coordinator's update channel.
const UpdateBufferSize = 64

// Update reports progress or completion of one background transfer.
// Pane is the destination pane, whose progress the transfer drives.
type Update struct {
	TransferID  string
	Pane        ID
	Source      ID
	Mode        transfer.Mode
	Progress    transfer.Progress
	CurrentFile string

	// Done is set exactly once per transfer, on the final update.
	Done    bool
	Outcome *transfer.Outcome
	// Err is non-nil only when the engine rejected the request before
	// doing any work.
	Err error
}

// Coordinator owns both panes and runs transfers between them in the
// background, one at a time per pane.
type Coordinator struct {
	panes  [2]*State
	engine *transfer.Engine
	logger zerolog.Logger

	updates   chan Update
	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	nextID    atomic.Uint64

	mu   sync.Mutex
	jobs map[string]*job
}

type job struct {
	id          string
	source      *State
	destination *State
	mode        transfer.Mode
	cancel      context.CancelFunc
}

// NewCoordinator wires left and right to engine. The coordinator becomes the
// engine's event emitter.
func NewCoordinator(left, right *State, engine *transfer.Engine, logger zerolog.Logger) *Coordinator {
	c := &Coordinator{
		panes:   [2]*State{left, right},
		engine:  engine,
		logger:  logger,
		updates: make(chan Update, UpdateBufferSize),
		closing: make(chan struct{}),
		jobs:    make(map[string]*job),
	}
	engine.SetEventEmitter(c)

	return c
}

// Pane returns the state of one side.
func (c *Coordinator) Pane(id ID) *State {
	return c.panes[id]
}

// Updates is the single-consumer stream of progress and completion updates.
// It is closed by Close.
func (c *Coordinator) Updates() <-chan Update {
	return c.updates
}

// Copy copies the acting pane's selection into its sibling's directory.
func (c *Coordinator) Copy(acting ID) (string, error) {
	return c.Start(acting, transfer.Copy)
}

// Move moves the acting pane's selection into its sibling's directory.
func (c *Coordinator) Move(acting ID) (string, error) {
	return c.Start(acting, transfer.Move)
}

// Start launches a background transfer from the acting pane into its sibling
// and returns its id. It fails without side effects if the selection is
// empty, the sibling has no directory, or either pane is already busy.
func (c *Coordinator) Start(acting ID, mode transfer.Mode) (string, error) {
	source := c.panes[acting]
	destination := c.panes[acting.Sibling()]

	sources := source.Selection()
	if len(sources) == 0 {
		return "", &transfer.PreconditionError{Reason: fmt.Sprintf("nothing selected in %s pane", acting)}
	}

	destRoot := destination.Root()
	if destRoot == "" {
		return "", &transfer.PreconditionError{Reason: fmt.Sprintf("%s pane has no directory", acting.Sibling())}
	}

	id := fmt.Sprintf("t%d", c.nextID.Add(1))

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closing:
		return "", &transfer.PreconditionError{Reason: "shutting down"}
	default:
	}

	err := destination.claim(id)
	if err != nil {
		return "", err
	}

	err = source.claim(id)
	if err != nil {
		destination.release(id)
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{id: id, source: source, destination: destination, mode: mode, cancel: cancel}
	c.jobs[id] = j

	req := transfer.Request{
		ID:              id,
		Sources:         sources,
		DestinationRoot: destRoot,
		Mode:            mode,
	}

	c.logger.Info().
		Str("transfer", id).
		Str("mode", mode.String()).
		Str("from", acting.String()).
		Int("selected", len(sources)).
		Str("destination", destRoot).
		Msg("transfer queued")

	c.wg.Add(1)

	go c.run(ctx, j, req)

	return id, nil
}

// Cancel asks a running transfer to stop. It reports whether id was running.
// Work already done is kept.
func (c *Coordinator) Cancel(id string) bool {
	c.mu.Lock()
	j, ok := c.jobs[id]
	c.mu.Unlock()

	if !ok {
		return false
	}

	c.logger.Info().Str("transfer", id).Msg("cancel requested")
	j.cancel()

	return true
}

// Running returns the ids of transfers still in flight.
func (c *Coordinator) Running() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.jobs))
	for id := range c.jobs {
		ids = append(ids, id)
	}

	return ids
}

// Wait blocks until every started transfer has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels running transfers, waits for them and closes Updates.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.closing)

		for _, j := range c.jobs {
			j.cancel()
		}
		c.mu.Unlock()

		c.wg.Wait()
		close(c.updates)
	})
}

// Emit implements transfer.EventEmitter. It runs on the transfer's goroutine.
func (c *Coordinator) Emit(event transfer.Event) {
	switch ev := event.(type) {
	case transfer.TransferProgress:
		j := c.job(ev.ID)
		if j == nil {
			return
		}

		j.destination.setProgress(ev.Progress)
		c.offer(Update{
			TransferID:  j.id,
			Pane:        j.destination.ID(),
			Source:      j.source.ID(),
			Mode:        j.mode,
			Progress:    ev.Progress,
			CurrentFile: ev.CurrentFile,
		})
	case transfer.FileFailed:
		c.logger.Warn().Str("transfer", ev.ID).Str("path", ev.Failure.Path).Err(ev.Failure.Reason).Msg("file failed")
	}
}

func (c *Coordinator) job(id string) *job {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.jobs[id]
}

func (c *Coordinator) run(ctx context.Context, j *job, req transfer.Request) {
	defer c.wg.Done()
	defer j.cancel()

	outcome, err := c.engine.Execute(ctx, req)
	if err != nil {
		c.logger.Warn().Str("transfer", j.id).Err(err).Msg("transfer rejected")
	}

	j.destination.setProgress(transfer.Progress{})

	for _, pane := range []*State{j.destination, j.source} {
		refreshErr := pane.Refresh()
		if refreshErr != nil {
			c.logger.Warn().Str("pane", pane.ID().String()).Err(refreshErr).Msg("refresh failed")
		}
	}

	c.mu.Lock()
	delete(c.jobs, j.id)
	j.source.release(j.id)
	j.destination.release(j.id)
	c.mu.Unlock()

	c.deliver(Update{
		TransferID: j.id,
		Pane:       j.destination.ID(),
		Source:     j.source.ID(),
		Mode:       j.mode,
		Done:       true,
		Outcome:    outcome,
		Err:        err,
	})
}

// offer drops the update when the consumer is behind; the pane's own
// progress is always current, so a later update supersedes it.
func (c *Coordinator) offer(update Update) {
	select {
	case c.updates <- update:
	default:
	}
}

// deliver blocks until the consumer takes the update or the coordinator closes.
func (c *Coordinator) deliver(update Update) {
	select {
	case c.updates <- update:
	case <-c.closing:
	}
}

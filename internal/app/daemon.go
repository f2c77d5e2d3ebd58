package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bezmoradi/keycycle/internal/binding"
	"github.com/bezmoradi/keycycle/internal/clipboard"
	"github.com/bezmoradi/keycycle/internal/config"
	"github.com/bezmoradi/keycycle/internal/console"
	"github.com/bezmoradi/keycycle/internal/feedback"
	"github.com/bezmoradi/keycycle/internal/hotkeys"
	"github.com/bezmoradi/keycycle/internal/mapping"
	"github.com/bezmoradi/keycycle/internal/metrics"
	"github.com/bezmoradi/keycycle/internal/remote"
)

const (
	dryRunPrompt    = "🔑 Combination to press (or 'quit'): "
	shutdownTimeout = time.Second
)

// Options configures a Daemon.
type Options struct {
	Config *config.Config

	// Service is the OS hotkey backend. With DryRun, or when nil, an
	// in-memory service is used and combinations are typed on the console.
	Service hotkeys.Service
	DryRun  bool

	In  io.Reader
	Out io.Writer

	// Notifier overrides the desktop feedback backend.
	Notifier *feedback.Notifier
}

type Daemon struct {
	config     *config.Config
	console    *console.Console
	actions    *binding.Actions
	service    hotkeys.Service
	memory     *hotkeys.MemoryService
	dispatcher *hotkeys.Dispatcher
	manager    *mapping.Manager
	tracker    *metrics.Tracker
	notifier   *feedback.Notifier
	hub        *remote.Hub
}

func NewDaemon(opts Options) *Daemon {
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	d := &Daemon{
		config:   opts.Config,
		console:  console.New(in, out),
		service:  opts.Service,
		notifier: opts.Notifier,
	}
	if opts.DryRun || d.service == nil {
		d.memory = hotkeys.NewMemoryService(true)
		d.service = d.memory
	}
	return d
}

// Initialize builds the manager from the configured layouts. Nothing is
// registered with the OS until Run.
func (d *Daemon) Initialize() error {
	if d.config == nil {
		return fmt.Errorf("no configuration")
	}

	if d.notifier == nil {
		d.notifier = feedback.New(feedback.Options{
			Beep:   d.config.Feedback.Beep,
			Notify: d.config.Feedback.Notify,
		})
	}
	d.actions = builtinActions(d.console, d.notifier, clipboard.New())
	d.dispatcher = hotkeys.NewDispatcher(d.config.QueueSize)

	d.manager = mapping.NewManager(d.config.CycleKey, d.service, mapping.Options{
		Console: d.console,
		Wrap:    d.dispatcher.Wrap,
	})
	if err := config.Build(d.config, d.actions, d.manager); err != nil {
		return fmt.Errorf("failed to load mappings: %w", err)
	}

	if d.config.Metrics.Enabled {
		var storage *metrics.Storage
		if d.memory == nil {
			metricsDir, err := d.config.GetMetricsDir()
			if err != nil {
				return fmt.Errorf("failed to get metrics directory: %w", err)
			}
			storage, err = metrics.NewStorage(metricsDir)
			if err != nil {
				return fmt.Errorf("failed to initialize metrics: %w", err)
			}
		}
		d.tracker = metrics.NewTracker(storage)
		d.manager.Subscribe(d.tracker.OnSwitch)
	}

	d.manager.Subscribe(d.notifier.OnSwitch)

	if d.config.Remote.Enabled {
		d.hub = remote.NewHub(remote.HubOptions{
			Addr:    d.config.Remote.Addr,
			Manager: d.manager,
			Tracker: d.tracker,
			Post:    d.dispatcher.Post,
		})
		d.manager.Subscribe(d.hub.OnSwitch)
	}

	return nil
}

// Manager returns the mapping manager built by Initialize.
func (d *Daemon) Manager() *mapping.Manager {
	return d.manager
}

// Check finalizes the layouts without touching the OS and reports the first
// conflict.
func (d *Daemon) Check() error {
	if d.memory == nil {
		return fmt.Errorf("check requires the in-memory hotkey service")
	}
	return d.manager.Finalize()
}

// List prints every mapping and the persistent hotkeys.
func (d *Daemon) List() {
	for _, l := range d.manager.ListMappings() {
		d.console.Listing(l.Alias, l.Descriptions)
	}

	persistent := d.manager.Persistent()
	lines := make([]string, 0, len(persistent))
	for _, h := range persistent {
		lines = append(lines, h.Describe())
	}
	d.console.Listing("persistent", lines)
	d.console.Status("🔁 Cycle key: %s", d.manager.CycleKey())
}

// Run finalizes the mappings, registers them and serves key presses until
// ctx is cancelled or the process is interrupted.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.manager.Finalize(); err != nil {
		return err
	}
	if alias := d.config.InitialMapping; alias != "" {
		if err := d.manager.SetMapping(alias, true); err != nil {
			return fmt.Errorf("initial mapping: %w", err)
		}
	}

	if d.hub != nil {
		if err := d.hub.Start(ctx); err != nil {
			return err
		}
		d.console.Status("🌐 Remote control on %s", d.hub.URL())
	}

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		d.dispatcher.Run(ctx)
	}()

	d.console.Status("⌨️  keycycle started")
	d.console.Status("📋 Press %s to switch mappings", d.manager.CycleKey())
	if d.memory != nil {
		d.console.Status("🧪 Dry run: type a combination to press it")
		go d.pressLoop(ctx, stop)
	} else {
		d.console.Status("🛑 Press Ctrl+C to exit")
	}
	d.console.Println()

	<-ctx.Done()
	d.console.Println()
	d.console.Status("🛑 Shutting down...")
	d.Cleanup()

	select {
	case <-dispatched:
	case <-time.After(shutdownTimeout):
		// A cycle prompt may still be waiting for input.
		log.Printf("[DAEMON] dispatcher busy at shutdown")
	}
	return nil
}

// pressLoop reads combinations from the console and presses them. After each
// press it waits for the dispatcher to drain, so a cycle prompt opened by the
// press reads the following lines.
func (d *Daemon) pressLoop(ctx context.Context, stop context.CancelFunc) {
	defer stop()

	for ctx.Err() == nil {
		line, err := d.console.Prompt(dryRunPrompt)
		if err != nil {
			return
		}
		if line == "" {
			continue
		}
		if line == "quit" || line == "q" {
			return
		}

		combo, err := hotkeys.Normalize(line)
		if err != nil {
			d.console.Warn("❌ %v", err)
			continue
		}
		if !d.memory.Fire(combo) {
			d.console.Warn("Nothing registered on %s", combo)
			continue
		}

		drained := make(chan struct{})
		if !d.dispatcher.Post(func() { close(drained) }) {
			continue
		}
		select {
		case <-drained:
		case <-ctx.Done():
			return
		}
	}
}

// Cleanup releases OS hooks and prints the session summary.
func (d *Daemon) Cleanup() {
	if d.hub != nil {
		if err := d.hub.Stop(); err != nil {
			log.Printf("[DAEMON] %v", err)
		}
	}
	if d.dispatcher != nil {
		d.dispatcher.Stop()
	}
	if d.service != nil {
		if err := d.service.ClearAll(); err != nil {
			log.Printf("[DAEMON] failed to release hotkeys: %v", err)
		}
	}

	d.displaySessionMetrics()
}

func (d *Daemon) displaySessionMetrics() {
	if d.tracker == nil {
		return
	}
	lines := metrics.NewStatsFormatter().FormatSessionLines(d.tracker.Snapshot())
	d.console.Block(lines, true)
}

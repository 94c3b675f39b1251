package alert

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("orderly/alert")

type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Alerter receives events worth a human's attention. Implementations must not block.
type Alerter interface {
	Important(event string, fields map[string]string)
}

const (
	defaultQueueSize          = 64
	defaultDropReportInterval = time.Minute
	notifyTimeout             = 20 * time.Second
)

type ManagerOptions struct {
	QueueSize          int
	DropReportInterval time.Duration
	Now                func() time.Time
}

// Manager delivers alerts asynchronously through a bounded queue. When the queue is
// full new events are dropped and counted rather than blocking the caller.
type Manager struct {
	network  string
	account  string
	notifier Notifier
	now      func() time.Time

	queue              chan event
	stop               chan struct{}
	done               chan struct{}
	dropReportInterval time.Duration
	droppedTotal       uint64
	droppedWindow      uint64

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

type event struct {
	name   string
	at     time.Time
	fields map[string]string
}

func NewManager(network, account string, notifier Notifier) *Manager {
	return NewManagerWithOptions(network, account, notifier, ManagerOptions{})
}

// NewManagerWithOptions returns nil when notifier is nil; a nil *Manager is a valid no-op Alerter.
func NewManagerWithOptions(network, account string, notifier Notifier, opts ManagerOptions) *Manager {
	if notifier == nil {
		return nil
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	interval := opts.DropReportInterval
	if interval == 0 {
		interval = defaultDropReportInterval
	}
	if interval < 0 {
		interval = 0
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := &Manager{
		network:            network,
		account:            account,
		notifier:           notifier,
		now:                now,
		queue:              make(chan event, size),
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
		dropReportInterval: interval,
	}
	m.wg.Add(1)
	go m.loop()
	if interval > 0 {
		m.wg.Add(1)
		go m.dropReportLoop()
	}
	go func() {
		m.wg.Wait()
		close(m.done)
	}()
	return m
}

func (m *Manager) Important(name string, fields map[string]string) {
	if m == nil {
		return
	}
	ev := event{name: name, at: m.now().UTC(), fields: cloneFields(fields)}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- ev:
	default:
		total := atomic.AddUint64(&m.droppedTotal, 1)
		if atomic.AddUint64(&m.droppedWindow, 1) == 1 {
			log.Warnw("alert dropped", "event", name, "reason", "queue_full", "dropped_total", total, "queue_cap", cap(m.queue))
		}
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stop)
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) Dropped() uint64 {
	if m == nil {
		return 0
	}
	return atomic.LoadUint64(&m.droppedTotal)
}

func (m *Manager) loop() {
	defer m.wg.Done()
	for {
		select {
		case ev := <-m.queue:
			m.send(ev)
		case <-m.stop:
			for {
				select {
				case ev := <-m.queue:
					m.send(ev)
				default:
					m.reportDropped()
					return
				}
			}
		}
	}
}

func (m *Manager) dropReportLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.dropReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.reportDropped()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) reportDropped() {
	dropped := atomic.SwapUint64(&m.droppedWindow, 0)
	if dropped == 0 {
		return
	}
	log.Warnw("alerts dropped since last report", "dropped", dropped, "dropped_total", atomic.LoadUint64(&m.droppedTotal))
}

func (m *Manager) send(ev event) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := m.notifier.Notify(ctx, m.format(ev)); err != nil {
		log.Errorw("alert notify failed", "event", ev.name, "err", err)
	}
}

func (m *Manager) format(ev event) string {
	lines := []string{
		"[orderly] " + ev.name,
		"time: " + ev.at.Format(time.RFC3339),
		"network: " + m.network,
	}
	if m.account != "" {
		lines = append(lines, "account: "+m.account)
	}
	keys := make([]string, 0, len(ev.fields))
	for k := range ev.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, k+": "+ev.fields[k])
	}
	return strings.Join(lines, "\n")
}

func cloneFields(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

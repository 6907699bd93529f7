package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// EmitFunc sends a named payload to the frontend.
type EmitFunc func(ctx context.Context, name string, payload any)

// Emitter forwards notices and storage events to the webview. It is a no-op
// until EnableRuntime or SetCustom is called, so services can run (and be
// tested) without a window.
type Emitter struct {
	log logrus.FieldLogger

	mu   sync.RWMutex
	ctx  context.Context
	emit EmitFunc
}

func NewEmitter(log logrus.FieldLogger) *Emitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emitter{log: log, ctx: context.Background()}
}

// EnableRuntime switches emission to the Wails runtime bound to ctx.
func (e *Emitter) EnableRuntime(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx = ctx
	e.emit = func(ctx context.Context, name string, payload any) {
		runtime.EventsEmit(ctx, name, payload)
	}
}

// SetCustom replaces the sink; nil disables emission.
func (e *Emitter) SetCustom(fn EmitFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit = fn
}

// EmitNotice logs the notice and sends it to the frontend.
func (e *Emitter) EmitNotice(n Notice) {
	logNotice(e.log, n)
	e.send(NoticeEventName, n)
}

// EmitStorage sends a storage event to the frontend.
func (e *Emitter) EmitStorage(evt StorageEvent) {
	e.send(StorageEventName, evt)
}

// Bridge forwards every event published on bus to the frontend until the
// returned function is called.
func (e *Emitter) Bridge(bus *Bus) func() {
	return bus.Subscribe(e.EmitStorage)
}

func (e *Emitter) send(name string, payload any) {
	e.mu.RLock()
	emit, ctx := e.emit, e.ctx
	e.mu.RUnlock()
	if emit == nil {
		return
	}
	emit(ctx, name, payload)
}

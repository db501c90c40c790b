// Package devicetest provides an in-memory device.Gateway for tests.
package devicetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"officehours-backend/internal/device"
)

// ErrInjected is returned by operations the test asked to fail.
var ErrInjected = errors.New("injected gateway failure")

// Gateway is an in-memory device.Gateway. The exported fields configure
// failures; they must be set before the gateway is shared between goroutines.
type Gateway struct {
	Granted       bool
	FailCancelAll bool
	// FailTitles makes ScheduleDaily fail for reminders with these titles.
	FailTitles map[string]bool

	mu         sync.Mutex
	pending    []device.Reminder
	next       int
	configured int
	cancelAlls int
}

// New returns an empty gateway that grants permission.
func New() *Gateway {
	return &Gateway{Granted: true, FailTitles: map[string]bool{}}
}

func (g *Gateway) Configure(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.configured++
	return nil
}

func (g *Gateway) RequestPermission(context.Context) (bool, error) {
	return g.Granted, nil
}

func (g *Gateway) CancelAll(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCancelAll {
		return ErrInjected
	}
	g.pending = nil
	g.cancelAlls++
	return nil
}

func (g *Gateway) Cancel(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, r := range g.pending {
		if r.ID == id {
			g.pending = append(g.pending[:i], g.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (g *Gateway) ScheduleDaily(_ context.Context, hour, minute int, title, body string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailTitles[title] {
		return "", ErrInjected
	}
	return g.add(title, body, device.Trigger{Kind: device.TriggerDaily, Hour: hour, Minute: minute, Repeats: true}), nil
}

func (g *Gateway) ScheduleInterval(_ context.Context, seconds int, title, body string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.add(title, body, device.Trigger{Kind: device.TriggerInterval, Seconds: seconds}), nil
}

func (g *Gateway) add(title, body string, trigger device.Trigger) string {
	g.next++
	id := fmt.Sprintf("r%d", g.next)
	g.pending = append(g.pending, device.Reminder{ID: id, Title: title, Body: body, Trigger: trigger, CreatedAt: time.Now()})
	return id
}

func (g *Gateway) ListAll(context.Context) ([]device.Reminder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]device.Reminder(nil), g.pending...), nil
}

// Configured returns how many times Configure was called.
func (g *Gateway) Configured() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.configured
}

// CancelAlls returns how many times CancelAll succeeded.
func (g *Gateway) CancelAlls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelAlls
}

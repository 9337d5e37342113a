package view

import (
	"sync"

	"go.uber.org/zap"
)

// Notifier shows transient item-level outcomes (toasts).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

const (
	ToastSuccess = "success"
	ToastError   = "error"
)

type Toast struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Recorder keeps toasts in memory until they are drained.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Success(msg string) { r.add(ToastSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(ToastError, msg) }

func (r *Recorder) add(kind, msg string) {
	r.mu.Lock()
	r.toasts = append(r.toasts, Toast{Kind: kind, Message: msg})
	r.mu.Unlock()
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Drain returns the recorded toasts and forgets them.
func (r *Recorder) Drain() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.toasts
	r.toasts = nil
	return out
}

type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Success(msg string) {
	n.Log.Info("toast", zap.String("kind", ToastSuccess), zap.String("message", msg))
}

func (n LogNotifier) Error(msg string) {
	n.Log.Warn("toast", zap.String("kind", ToastError), zap.String("message", msg))
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

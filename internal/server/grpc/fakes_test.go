package grpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/signmanager/internal/logging"
	"github.com/dmitrijs2005/signmanager/internal/server/models"
	"github.com/dmitrijs2005/signmanager/internal/server/services"
)

type fakeUsers struct {
	regResp *models.User
	regErr  error

	loginResp *services.AccessToken
	loginErr  error

	profileResp *models.User
	profileErr  error

	gotEmail string
}

func (f *fakeUsers) Register(_ context.Context, email, _, _ string) (*models.User, error) {
	f.gotEmail = email
	return f.regResp, f.regErr
}

func (f *fakeUsers) Login(_ context.Context, email, _ string) (*services.AccessToken, error) {
	f.gotEmail = email
	return f.loginResp, f.loginErr
}

func (f *fakeUsers) Profile(_ context.Context, email string) (*models.User, error) {
	f.gotEmail = email
	return f.profileResp, f.profileErr
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recordingLogger keeps every entry so tests can assert on what was logged.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	with    []any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (r *recordingLogger) add(level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, logEntry{level: level, msg: msg, args: append(append([]any{}, r.with...), args...)})
}

func (r *recordingLogger) Debug(_ context.Context, msg string, args ...any) { r.add("debug", msg, args) }
func (r *recordingLogger) Info(_ context.Context, msg string, args ...any)  { r.add("info", msg, args) }
func (r *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { r.add("warn", msg, args) }
func (r *recordingLogger) Error(_ context.Context, msg string, args ...any) { r.add("error", msg, args) }
func (r *recordingLogger) With(args ...any) logging.Logger {
	return &recordingLogger{mu: r.mu, entries: r.entries, with: append(append([]any{}, r.with...), args...)}
}

func (r *recordingLogger) all() []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]logEntry{}, *r.entries...)
}

// find returns the value logged under key in the first entry with msg.
func (r *recordingLogger) find(msg, key string) (string, bool) {
	for _, e := range r.all() {
		if e.msg != msg {
			continue
		}
		for i := 0; i+1 < len(e.args); i += 2 {
			if e.args[i] == key {
				return fmt.Sprint(e.args[i+1]), true
			}
		}
	}
	return "", false
}

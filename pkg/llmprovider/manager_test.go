package llmprovider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockProvider is a test implementation of the Provider interface
type mockProvider struct {
	name      string
	model     string
	failTimes int // fail this many calls before succeeding; -1 fails forever
	delay     time.Duration
	response  *Response
	callCount int
}

func (m *mockProvider) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	m.callCount++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.failTimes < 0 || m.callCount <= m.failTimes {
		return nil, errors.New("mock provider error")
	}
	return m.response, nil
}

func (m *mockProvider) Name() string  { return m.name }
func (m *mockProvider) Model() string { return m.model }

// mockLogger is a test implementation of the Logger interface
type mockLogger struct {
	mu           sync.Mutex
	infoMessages []string
	warnMessages []string
}

func (m *mockLogger) record(dst *[]string, arg []any) {
	if len(arg) == 0 {
		return
	}
	if msg, ok := arg[0].(string); ok {
		m.mu.Lock()
		*dst = append(*dst, msg)
		m.mu.Unlock()
	}
}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                     { m.record(&m.infoMessages, arg) }
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                     { m.record(&m.warnMessages, arg) }
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) DPanicf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Panic(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Panicf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any)  {}

func okResponse(provider string) *Response {
	return &Response{
		Text:         `{"summary":"ok"}`,
		ProviderName: provider,
		Usage:        &Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

func TestManager_SuccessWithPrimaryProvider(t *testing.T) {
	primary := &mockProvider{name: "anthropic", model: "claude", response: okResponse("anthropic")}
	secondary := &mockProvider{name: "gemini", model: "flash", response: okResponse("gemini")}
	logger := &mockLogger{}

	manager := NewManager([]Provider{primary, secondary}, &Config{FallbackEnabled: true, RetryAttempts: 1}, logger)

	resp, err := manager.GenerateContent(context.Background(), UserText("sys", "hello"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ProviderName != "anthropic" {
		t.Errorf("expected anthropic, got %s", resp.ProviderName)
	}
	if primary.callCount != 1 || secondary.callCount != 0 {
		t.Errorf("unexpected call counts: primary=%d secondary=%d", primary.callCount, secondary.callCount)
	}
	if len(logger.infoMessages) != 1 {
		t.Errorf("expected one success log, got %d", len(logger.infoMessages))
	}
}

func TestManager_FallbackToSecondaryProvider(t *testing.T) {
	primary := &mockProvider{name: "anthropic", failTimes: -1}
	secondary := &mockProvider{name: "gemini", response: okResponse("gemini")}
	logger := &mockLogger{}

	manager := NewManager([]Provider{primary, secondary}, &Config{FallbackEnabled: true, RetryAttempts: 2}, logger)

	resp, err := manager.GenerateContent(context.Background(), UserText("", "hello"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ProviderName != "gemini" {
		t.Errorf("expected gemini, got %s", resp.ProviderName)
	}
	if primary.callCount != 2 {
		t.Errorf("expected primary retried twice, got %d", primary.callCount)
	}
	if len(logger.warnMessages) != 1 {
		t.Errorf("expected one failure log, got %d", len(logger.warnMessages))
	}
}

func TestManager_RetrySucceeds(t *testing.T) {
	primary := &mockProvider{name: "anthropic", failTimes: 1, response: okResponse("anthropic")}

	manager := NewManager([]Provider{primary}, &Config{RetryAttempts: 3, RetryDelay: time.Millisecond}, &mockLogger{})

	if _, err := manager.GenerateContent(context.Background(), UserText("", "hello")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if primary.callCount != 2 {
		t.Errorf("expected 2 calls, got %d", primary.callCount)
	}
}

func TestManager_AllProvidersFail(t *testing.T) {
	primary := &mockProvider{name: "anthropic", failTimes: -1}
	secondary := &mockProvider{name: "gemini", failTimes: -1}

	manager := NewManager([]Provider{primary, secondary}, &Config{FallbackEnabled: true}, &mockLogger{})

	_, err := manager.GenerateContent(context.Background(), UserText("", "hello"))
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Provider != "gemini" {
		t.Errorf("expected last provider error from gemini, got %v", err)
	}
}

func TestManager_NoFallbackWhenDisabled(t *testing.T) {
	primary := &mockProvider{name: "anthropic", failTimes: -1}
	secondary := &mockProvider{name: "gemini", response: okResponse("gemini")}

	manager := NewManager([]Provider{primary, secondary}, &Config{FallbackEnabled: false}, &mockLogger{})

	if _, err := manager.GenerateContent(context.Background(), UserText("", "hello")); err == nil {
		t.Fatal("expected error when fallback disabled")
	}
	if secondary.callCount != 0 {
		t.Errorf("secondary should not be called, got %d", secondary.callCount)
	}
}

func TestManager_EmptyTextIsFailure(t *testing.T) {
	primary := &mockProvider{name: "anthropic", response: &Response{}}

	manager := NewManager([]Provider{primary}, nil, &mockLogger{})

	_, err := manager.GenerateContent(context.Background(), UserText("", "hello"))
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestManager_ContextDeadlineIsDetectable(t *testing.T) {
	slow := &mockProvider{name: "anthropic", delay: time.Second, response: okResponse("anthropic")}

	manager := NewManager([]Provider{slow}, &Config{MaxTotalTimeout: 20 * time.Millisecond}, &mockLogger{})

	_, err := manager.GenerateContent(context.Background(), UserText("", "hello"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded in chain, got %v", err)
	}
}

func TestManager_NoProvidersConfigured(t *testing.T) {
	manager := NewManager(nil, &Config{}, &mockLogger{})

	_, err := manager.GenerateContent(context.Background(), UserText("", "hello"))
	if !errors.Is(err, ErrNoProvidersConfigured) {
		t.Fatalf("expected ErrNoProvidersConfigured, got %v", err)
	}
	if manager.Name() != "none" {
		t.Errorf("expected name none, got %s", manager.Name())
	}
}

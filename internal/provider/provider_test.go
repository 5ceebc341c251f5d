package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/breaker"
	"github.com/ukcompliance/complianceengine/internal/llm"
)

type categorizedErr struct {
	msg string
	cat llm.ErrorCategory
}

func (e categorizedErr) Error() string             { return e.msg }
func (e categorizedErr) Category() llm.ErrorCategory { return e.cat }

func TestRouter_UnknownProvider(t *testing.T) {
	r := NewRouter(nil, nil, nil)
	_, err := r.Call(context.Background(), "nope", "prompt", nil)
	assert.Error(t, err)
}

func TestRouter_MissingAPIKey(t *testing.T) {
	r := NewRouter(nil, nil, nil)
	r.Register(Config{Name: "gemini", Client: &llm.MockClient{}, APIKey: ""})

	_, err := r.Call(context.Background(), "gemini", "prompt", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestRouter_SuccessOnFirstAttempt(t *testing.T) {
	r := NewRouter(breaker.NewManager(breaker.DefaultConfig(), nil), nil, nil)
	client := &llm.MockClient{
		GenerateContentFunc: func(ctx context.Context, prompt string, params map[string]interface{}) (*llm.Result, error) {
			return &llm.Result{Content: "ok"}, nil
		},
	}
	r.Register(Config{Name: "gemini", Client: client, APIKey: "key"})

	res, err := r.Call(context.Background(), "gemini", "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Content)
}

func TestRouter_RetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	client := &llm.MockClient{
		GenerateContentFunc: func(ctx context.Context, prompt string, params map[string]interface{}) (*llm.Result, error) {
			attempts++
			if attempts < 2 {
				return nil, categorizedErr{msg: "network blip", cat: llm.CategoryNetwork}
			}
			return &llm.Result{Content: "recovered"}, nil
		},
	}
	r := NewRouter(breaker.NewManager(breaker.DefaultConfig(), nil), nil, nil).WithBaseDelay(time.Millisecond)
	r.Register(Config{Name: "gemini", Client: client, APIKey: "key"})

	res, err := r.Call(context.Background(), "gemini", "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Content)
	assert.Equal(t, 2, attempts)
}

func TestRouter_DoesNotRetryNonTransientErrors(t *testing.T) {
	attempts := 0
	client := &llm.MockClient{
		GenerateContentFunc: func(ctx context.Context, prompt string, params map[string]interface{}) (*llm.Result, error) {
			attempts++
			return nil, categorizedErr{msg: "bad request", cat: llm.CategoryInvalidRequest}
		},
	}
	r := NewRouter(breaker.NewManager(breaker.DefaultConfig(), nil), nil, nil)
	r.Register(Config{Name: "gemini", Client: client, APIKey: "key"})

	_, err := r.Call(context.Background(), "gemini", "prompt", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRouter_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	client := &llm.MockClient{
		GenerateContentFunc: func(ctx context.Context, prompt string, params map[string]interface{}) (*llm.Result, error) {
			return nil, categorizedErr{msg: "down", cat: llm.CategoryServer}
		},
	}
	cfg := breaker.Config{FailureThreshold: 1, Timeout: time.Minute, SuccessThreshold: 1}
	r := NewRouter(breaker.NewManager(cfg, nil), nil, nil)
	r.Register(Config{Name: "gemini", Client: client, APIKey: "key"})

	_, err := r.Call(context.Background(), "gemini", "prompt", nil)
	assert.Error(t, err)

	_, err = r.Call(context.Background(), "gemini", "prompt", nil)
	assert.ErrorIs(t, err, breaker.ErrOpen)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(categorizedErr{cat: llm.CategoryNetwork}))
	assert.True(t, isTransient(categorizedErr{cat: llm.CategoryServer}))
	assert.False(t, isTransient(categorizedErr{cat: llm.CategoryInvalidRequest}))
	assert.False(t, isTransient(breaker.ErrOpen))
	assert.True(t, isTransient(errors.New("uncategorized")))
}

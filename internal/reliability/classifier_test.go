package reliability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "cancelled", err: context.Canceled, want: KindCancellation},
		{name: "wrapped cancel", err: fmt.Errorf("read stream: %w", context.Canceled), want: KindCancellation},
		{name: "capability", err: fmt.Errorf("speech: %w", ErrCapabilityUnavailable), want: KindCapability},
		{name: "status", err: &StatusError{Code: 502}, want: KindTransport},
		{name: "deadline is transport", err: context.DeadlineExceeded, want: KindTransport},
		{name: "plain", err: errors.New("connection refused"), want: KindTransport},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestStatusError(t *testing.T) {
	err := fmt.Errorf("submit: %w", &StatusError{Code: 503, Body: "overloaded"})
	assert.EqualError(t, err, "submit: backend returned status 503: overloaded")
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(&StatusError{Code: 400}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.True(t, IsRetryable(errors.New("connection reset")))
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRetryableHTTPStatus(tc.code), "status %d", tc.code)
	}
}

func TestExponentialBackoffCap(t *testing.T) {
	base := 100 * time.Millisecond
	capDur := 700 * time.Millisecond
	assert.Equal(t, base, ExponentialBackoff(0, base, capDur))
	assert.Equal(t, 400*time.Millisecond, ExponentialBackoff(2, base, capDur))
	assert.Equal(t, capDur, ExponentialBackoff(10, base, capDur))
}

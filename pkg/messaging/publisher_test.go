package messaging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestIsConnectionError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"closed sentinel", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"other", errors.New("NOT_FOUND - no exchange"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isConnectionError(tc.err))
		})
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "ledger.events", Message{ID: "1"}))
	assert.NoError(t, p.Close())
}

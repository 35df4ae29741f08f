package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNoApplication(t *testing.T) {
	ctx := NewContext(context.Background(), nil)

	_, ok := fromContext(ctx)
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})
		RecordCount(ctx, "count", 1)
		RecordDuration(ctx, "duration", time.Second)
	})
}

func TestNoTransaction(t *testing.T) {
	tracer := TraceMethodCall(context.Background(), "struct", "method")
	assert.Nil(t, tracer)

	assert.NotPanics(t, func() {
		tracer.AddAttribute("key", "value")
		tracer.AddAttributes(map[string]interface{}{"key": "value"})
		tracer.OnError(errors.New("failure"))
		tracer.End()
	})
}

func TestForwardedMessage(t *testing.T) {
	entry := logrus.NewEntry(logrus.StandardLogger())
	entry.Message = "failure minting"
	assert.Equal(t, "failure minting", forwardedMessage(entry))

	entry = entry.WithFields(logrus.Fields{
		"campaign": "campaign_address",
		"index":    3,
	}).WithError(errors.New("sold out"))
	entry.Message = "failure minting"

	assert.Equal(
		t,
		`message="failure minting", error="sold out", data={"campaign":"campaign_address","index":3}`,
		forwardedMessage(entry),
	)
}

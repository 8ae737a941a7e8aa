package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/launchlist/waitlist-service/internal/events"
	"github.com/launchlist/waitlist-service/internal/service"
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordOutcome(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[name]++
}

func TestNotificationServiceHandlesEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &countingRecorder{}

	var forwarded []events.EventType
	forward := func(_ context.Context, e events.Event) error {
		forwarded = append(forwarded, e.Type)
		return nil
	}

	svc := service.NewNotificationService(dispatcher, zap.New(core), recorder, forward)
	svc.RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventSignupCreated, events.SignupCreatedPayload{SignupID: "s1", Source: "Direct"})))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventAdminLoginFailed, events.AdminAuthPayload{ClientID: "10.0.0.1"})))

	assert.Equal(t, 1, recorder.counts["signup_created"])
	assert.Equal(t, 1, recorder.counts["admin_login_failed"])
	assert.Equal(t, []events.EventType{events.EventSignupCreated, events.EventAdminLoginFailed}, forwarded)

	entries := logs.FilterMessage("SignupCreated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "s1", entries[0].ContextMap()["signup_id"])
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.ContextMap(), "email")
	}
}

func TestNotificationServiceWithoutDispatcher(t *testing.T) {
	svc := service.NewNotificationService(nil, nil, nil, nil)
	assert.NotPanics(t, svc.RegisterHandlers)
}

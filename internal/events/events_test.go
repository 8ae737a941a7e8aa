package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventSignupCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+string(e.Type))
		return errors.New("boom")
	})
	d.Subscribe(EventSignupCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventAdminLoggedOut, func(context.Context, Event) error {
		got = append(got, "logout")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventSignupCreated, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, []string{"first:signup_created", "second:signup_created"}, got)

	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventAdminLoginFailed, nil)))
}

func TestNoopDispatcher(t *testing.T) {
	d := NewNoopDispatcher()
	d.Subscribe(EventSignupCreated, func(context.Context, Event) error { return errors.New("never") })
	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventSignupCreated, nil)))
}

type recordingPublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.subject = subject
	p.data = data
	return p.err
}

func TestNATSForwarder(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewForwarder(pub, "waitlist")

	event := NewEvent(EventSignupCreated, SignupCreatedPayload{SignupID: "abc", Source: "Direct"})
	require.NoError(t, f.Handle(context.Background(), event))
	assert.Equal(t, "waitlist.signup_created", pub.subject)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	assert.Equal(t, "signup_created", decoded["type"])
	assert.Equal(t, "abc", decoded["payload"].(map[string]any)["signup_id"])

	pub.err = errors.New("nats: connection closed")
	assert.Error(t, f.Handle(context.Background(), event))

	assert.Equal(t, "admin_logged_out", NewForwarder(pub, "").Subject(EventAdminLoggedOut))
	assert.NoError(t, f.Close())
}

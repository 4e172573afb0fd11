package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"stage":      "allocation_entry",
		"submitting": false,
	}

	before := time.Now()
	evt := NewEvent(EventTypeUpdated, EntityTypeForm, payload)
	after := time.Now()

	assert.Equal(t, "form.updated", evt.Type)
	assert.Equal(t, EntityTypeForm, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NoticeRaised(map[string]interface{}{"level": "error", "message": "Invalid credentials"})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "notice.raised", decoded["type"])
	assert.Equal(t, "notice", decoded["entity"])
	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Invalid credentials", payload["message"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"user": "alice"}

	tests := []struct {
		name     string
		evt      Event
		expected string
		entity   EntityType
	}{
		{"FormUpdated", FormUpdated(payload), "form.updated", EntityTypeForm},
		{"FormSubmitted", FormSubmitted(payload), "form.submitted", EntityTypeForm},
		{"SessionLoggedIn", SessionLoggedIn(payload), "session.logged_in", EntityTypeSession},
		{"SessionLoggedOut", SessionLoggedOut(payload), "session.logged_out", EntityTypeSession},
		{"NoticeRaised", NoticeRaised(payload), "notice.raised", EntityTypeNotice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}

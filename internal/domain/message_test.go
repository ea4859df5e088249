package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_HasSubject(t *testing.T) {
	assert.True(t, Message{Recipient: "a@x.com", Subject: "Welcome", Content: "hi"}.HasSubject())
	assert.False(t, Message{Recipient: "a@x.com", Content: "hi"}.HasSubject())
}

func TestMessage_WireNames(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"to":"555-0100","content":"code:123"}`), &msg))

	assert.Equal(t, Message{Recipient: "555-0100", Content: "code:123"}, msg)
	assert.False(t, msg.HasSubject())
}

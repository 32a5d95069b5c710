package service

import (
	"encoding/json"
)

// Publisher pushes a serialized event to connected realtime clients.
type Publisher interface {
	Publish(msg []byte)
}

type nopPublisher struct{}

func (nopPublisher) Publish([]byte) {}

func publishJSON(p Publisher, payload map[string]interface{}) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	p.Publish(msg)
}

// Package events publishes session-level enrollment/verification
// decisions to NATS, grounded on iluha78-FD's internal/queue producer
// (nats.Connect with auto-reconnect, JSON-encoded payloads). This core
// only emits one decision per session, so it publishes over plain NATS
// core rather than JetStream — there is no backlog to replay and no
// consumer-group fan-out to coordinate.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/irislab/irisgo/internal/capture"
)

// Decision is the wire payload for one published decision event.
type Decision struct {
	SubjectID  string              `json:"subjectId,omitempty"`
	Enrolled   bool                `json:"enrolled"`
	Candidates []capture.Candidate `json:"candidates,omitempty"`
	Error      string              `json:"error,omitempty"`
	At         time.Time           `json:"at"`
}

// Publisher publishes capture.DecisionEvent values to a fixed subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to url with an indefinite-retry reconnect
// policy, since this daemon runs unattended.
func NewPublisher(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("events: connect nats: %w", err)
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

func (p *Publisher) Close() {
	p.nc.Close()
}

// Publish encodes and sends one decision event.
func (p *Publisher) Publish(e capture.DecisionEvent) error {
	payload := Decision{Candidates: e.Candidates, At: time.Now()}
	if e.Enrolled != nil {
		payload.Enrolled = true
		payload.SubjectID = e.Enrolled.ID
	}
	if e.Err != nil {
		payload.Error = e.Err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal decision: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("events: publish decision: %w", err)
	}
	return nil
}

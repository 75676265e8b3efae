package eventbus

import (
	"encoding/json"
	"sync"
	"time"
)

type (
	// Bus fans backup lifecycle events out to interested subscribers,
	// keyed by profile ID ("*" subscribes to every profile).
	Bus interface {
		Subscribe(profileID string) (chan Event, func())
		Publish(profileID string, kind Kind, message string)
		PublishWithData(profileID string, kind Kind, message string, data []byte)
	}

	Event struct {
		ProfileID string          `json:"profile_id"`
		Kind      Kind            `json:"kind"`
		Message   string          `json:"message"`
		Data      json.RawMessage `json:"data,omitempty"`
		At        time.Time       `json:"at"`
	}

	Kind string
)

const (
	BackupStarted   Kind = "backup_started"
	BackupProgress  Kind = "backup_progress"
	BackupCompleted Kind = "backup_completed"
	BackupFailed    Kind = "backup_failed"
	RestoreStarted  Kind = "restore_started"
	RestoreDone     Kind = "restore_done"
	ScheduleUpdated Kind = "schedule_updated"
	LogsSynced      Kind = "logs_synced"
)

// AllProfiles subscribes a client to events from every profile.
const AllProfiles = "*"

type publisher struct {
	subscribers map[string][]chan Event
	lock        sync.Mutex
}

func New() Bus {
	return &publisher{
		subscribers: make(map[string][]chan Event),
	}
}

func (p *publisher) Subscribe(profileID string) (chan Event, func()) {
	p.lock.Lock()
	defer p.lock.Unlock()

	ch := make(chan Event, 256)
	p.subscribers[profileID] = append(p.subscribers[profileID], ch)

	cancel := func() {
		p.lock.Lock()
		defer p.lock.Unlock()
		subs := p.subscribers[profileID]
		for i, sub := range subs {
			if sub == ch {
				p.subscribers[profileID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}
	return ch, cancel
}

func (p *publisher) Publish(profileID string, kind Kind, message string) {
	p.PublishWithData(profileID, kind, message, nil)
}

func (p *publisher) PublishWithData(profileID string, kind Kind, message string, data []byte) {
	ev := Event{
		ProfileID: profileID,
		Kind:      kind,
		Message:   message,
		Data:      data,
		At:        time.Now().UTC(),
	}

	p.lock.Lock()
	targets := make([]chan Event, 0, len(p.subscribers[profileID])+len(p.subscribers[AllProfiles]))
	targets = append(targets, p.subscribers[profileID]...)
	if profileID != AllProfiles {
		targets = append(targets, p.subscribers[AllProfiles]...)
	}
	p.lock.Unlock()

	for _, ch := range targets {
		// a slow subscriber drops events rather than stalling a backup
		select {
		case ch <- ev:
		default:
		}
	}
}

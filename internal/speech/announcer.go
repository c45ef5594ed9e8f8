package speech

import (
	"github.com/andrevmm/ondeestou/internal/address"
	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

// Announcer converts address field changes into queued announcements.
// Priority follows field importance: município over bairro over
// logradouro, so arriving in a new town is always spoken before the
// street-level chatter that comes with it.
type Announcer struct {
	queue *Queue
	log   *logger.Logger
}

// NewAnnouncer creates an announcer feeding the given queue.
func NewAnnouncer(queue *Queue, log *logger.Logger) *Announcer {
	return &Announcer{queue: queue, log: log}
}

// Attach registers the announcer on every tracked field of the cache.
func (a *Announcer) Attach(cache *address.ChangeCache) error {
	for _, f := range domain.TrackedFields {
		if err := cache.OnField(f, a.HandleChange); err != nil {
			return err
		}
	}
	return nil
}

// HandleChange enqueues the announcement for one field change.
func (a *Announcer) HandleChange(ch domain.FieldChange) {
	text, priority := a.render(ch)
	if text == "" {
		return
	}
	if err := a.queue.Enqueue(text, priority); err != nil {
		a.log.Error("announcer: queueing %q: %v", text, err)
	}
}

func (a *Announcer) render(ch domain.FieldChange) (string, Priority) {
	switch ch.Field {
	case domain.FieldMunicipio:
		return LineMunicipioChange(ch.Previous, ch.Current), PriorityHigh
	case domain.FieldBairro:
		return LineBairroChange(ch.Previous, ch.Current), PriorityNormal
	case domain.FieldLogradouro:
		return LineLogradouroChange(ch.Previous, ch.Current), PriorityLow
	default:
		a.log.Warn("announcer: no line for field %q", ch.Field)
		return "", PriorityLow
	}
}

package simulation

import (
	"os"
	"sync"

	"code.cloudfoundry.org/lager/v3"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
)

// Recorder claims one of the optional observer names and keeps everything
// delivered to it. The registry drops traffic to unclaimed names, so a run
// without a recorder behaves identically.
type Recorder struct {
	logger   lager.Logger
	registry *communication.Registry
	name     string

	lock     sync.Mutex
	messages []communication.Message
}

func NewRecorder(logger lager.Logger, registry *communication.Registry, name string) *Recorder {
	return &Recorder{
		logger:   logger.Session("recorder", lager.Data{"name": name}),
		registry: registry,
		name:     name,
	}
}

func (r *Recorder) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	mailbox, err := r.registry.Claim(r.name)
	if err != nil {
		return err
	}
	defer r.registry.Release(r.name)

	close(ready)
	r.logger.Info("recording")

	for {
		select {
		case msg := <-mailbox.Chan():
			r.lock.Lock()
			r.messages = append(r.messages, msg)
			r.lock.Unlock()
		case <-signals:
			return nil
		}
	}
}

func (r *Recorder) Messages() []communication.Message {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]communication.Message{}, r.messages...)
}

// Announcements returns the auction announcements seen so far, in arrival
// order, skipping anything that does not parse.
func (r *Recorder) Announcements() []auctiontypes.Announcement {
	announcements := []auctiontypes.Announcement{}
	for _, msg := range r.Messages() {
		if msg.Intent != communication.Announce {
			continue
		}
		if announcement, err := auctiontypes.ParseAnnouncement(msg.Content); err == nil {
			announcements = append(announcements, announcement)
		}
	}
	return announcements
}

// Results returns the parseable settlement summaries seen so far.
func (r *Recorder) Results() []auctiontypes.ResultSummary {
	results := []auctiontypes.ResultSummary{}
	for _, msg := range r.Messages() {
		if msg.Intent != communication.Result {
			continue
		}
		if summary, err := auctiontypes.ParseResultSummary(msg.Content); err == nil {
			results = append(results, summary)
		}
	}
	return results
}

// Package notification fans auction announcements out to the buyers whose
// declared interests match the item. Only persistent buyers subscribe;
// ephemeral negotiators never appear in the index.
package notification

import (
	"os"
	"strings"

	"code.cloudfoundry.org/lager/v3"

	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/communication"
)

type Router struct {
	logger   lager.Logger
	registry *communication.Registry

	// interests maps persistent buyer name to its subscribed keywords
	// (genres and authors, one flat set).
	interests map[string]map[string]struct{}
}

func NewRouter(logger lager.Logger, registry *communication.Registry) *Router {
	return &Router{
		logger:    logger.Session("notification-router"),
		registry:  registry,
		interests: map[string]map[string]struct{}{},
	}
}

func (r *Router) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	mailbox, err := r.registry.Claim(communication.RouterName)
	if err != nil {
		return err
	}
	defer r.registry.Release(communication.RouterName)

	close(ready)
	r.logger.Info("started")

	for {
		select {
		case msg := <-mailbox.Chan():
			r.handle(msg)
		case <-signals:
			r.logger.Info("exited")
			return nil
		}
	}
}

func (r *Router) handle(msg communication.Message) {
	switch msg.Intent {
	case communication.Subscribe:
		r.subscribe(msg)
	case communication.Announce:
		r.announce(msg)
	}
}

func (r *Router) subscribe(msg communication.Message) {
	if msg.Sender == "" || communication.IsEphemeral(msg.Sender) {
		return
	}

	keywords := map[string]struct{}{}
	for _, keyword := range strings.Split(msg.Content, ",") {
		keyword = strings.TrimSpace(keyword)
		if keyword != "" {
			keywords[keyword] = struct{}{}
		}
	}
	r.interests[msg.Sender] = keywords

	r.logger.Info("subscribed", lager.Data{"buyer": msg.Sender, "keywords": len(keywords)})
}

func (r *Router) announce(msg communication.Message) {
	announcement, err := auctiontypes.ParseAnnouncement(msg.Content)
	if err != nil {
		r.logger.Error("dropping-malformed-announcement", err, lager.Data{"content": msg.Content})
		return
	}

	genre := announcement.Metadata.Genre
	author := announcement.Metadata.Author

	for buyer, keywords := range r.interests {
		_, genreMatch := keywords[genre]
		_, authorMatch := keywords[author]
		if !genreMatch && !authorMatch {
			continue
		}

		// forwarded verbatim; the buyer re-parses
		r.registry.Send(buyer, communication.Message{
			Intent:  communication.Announce,
			Sender:  communication.RouterName,
			Content: msg.Content,
		})

		match := "genre"
		if !genreMatch {
			match = "author"
		}
		r.logger.Info("notified", lager.Data{
			"buyer":   buyer,
			"auction": announcement.AuctionID,
			"match":   match,
		})
	}
}

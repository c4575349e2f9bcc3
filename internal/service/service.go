package service

import (
	"errors"

	"go-storefront/internal/ws"

	"gorm.io/gorm"
)

// Publisher receives change events after a mutation has committed.
type Publisher interface {
	Publish(event ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// notFound maps gorm's missing-row error to the service's sentinel
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

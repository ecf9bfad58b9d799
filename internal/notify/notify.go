package notify

import (
	"context"
	"errors"
)

//go:generate mockgen -source=notify.go -destination=mocks/sender_mock.go -package=mocks

// Sender delivers a plaintext notification.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// Multi fans a notification out to every sender and joins their errors.
type Multi []Sender

func (m Multi) Send(ctx context.Context, subject, body string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

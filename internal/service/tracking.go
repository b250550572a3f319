package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const trackingNumberAttempts = 10

var (
	trackingMin   = big.NewInt(1_000_000_000)
	trackingRange = big.NewInt(9_000_000_000)

	errTrackingExhausted = errors.New("could not allocate a unique tracking number")
)

// TrackingNumbers allocates 10-digit tracking numbers that are not yet used by any order.
type TrackingNumbers struct {
	exists   func(ctx context.Context, n string) (bool, error)
	generate func() (string, error)
}

func NewTrackingNumbers(exists func(ctx context.Context, n string) (bool, error)) *TrackingNumbers {
	return &TrackingNumbers{exists: exists, generate: randomTrackingNumber}
}

// Next retries generation on collision; the unique index on orders remains the final guard.
func (t *TrackingNumbers) Next(ctx context.Context) (string, error) {
	for i := 0; i < trackingNumberAttempts; i++ {
		n, err := t.generate()
		if err != nil {
			return "", err
		}
		taken, err := t.exists(ctx, n)
		if err != nil {
			return "", fmt.Errorf("check tracking number: %w", err)
		}
		if !taken {
			return n, nil
		}
	}
	return "", errTrackingExhausted
}

func randomTrackingNumber() (string, error) {
	n, err := rand.Int(rand.Reader, trackingRange)
	if err != nil {
		return "", err
	}
	return n.Add(n, trackingMin).String(), nil
}

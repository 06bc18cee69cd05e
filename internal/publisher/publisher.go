package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"energy-service/internal/models"
)

// Publisher forwards finished analytics results to a downstream system.
type Publisher interface {
	Publish(ctx context.Context, result models.AnalyticsResult) error
	Close() error
}

// Fanout publishes to every wrapped publisher and reports all failures.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, result models.AnalyticsResult) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func encode(result models.AnalyticsResult) ([]byte, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return body, nil
}

// ownerSegment makes an owner id safe to embed in a topic or routing key.
func ownerSegment(ownerID string) string {
	if ownerID == "" {
		return "anonymous"
	}
	return strings.NewReplacer("/", "_", "+", "_", "#", "_", ".", "_", "*", "_").Replace(ownerID)
}

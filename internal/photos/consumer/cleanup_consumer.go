package consumer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
	"github.com/framewell/framewell-backend/pkg/logger"
	"github.com/framewell/framewell-backend/pkg/outbox"
	"github.com/framewell/framewell-backend/pkg/outbox/idempotency"
	"github.com/framewell/framewell-backend/pkg/outbox/payloads"
	"github.com/framewell/framewell-backend/pkg/outbox/registry"
)

const consumerName = "photo-cleanup"

type objectStore interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

// CleanupConsumer removes stored objects for photo and studio deletion events.
// Events arrive as outbox envelopes on the photos subscription; rows are gone
// by the time the event is published, so the object keys in the payload are
// the only pointers left.
type CleanupConsumer struct {
	store        objectStore
	bucket       string
	subscription *pubsub.Subscriber
	idem         *idempotency.Manager
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewCleanupConsumer wires the dependencies required for storage cleanup.
// The idempotency manager is optional; without it duplicate deliveries are
// still safe because object deletes treat missing objects as success.
func NewCleanupConsumer(store objectStore, bucket string, subscription *pubsub.Subscriber, idem *idempotency.Manager, logg *logger.Logger) (*CleanupConsumer, error) {
	if store == nil {
		return nil, errors.New("object store is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("bucket is required")
	}
	if subscription == nil {
		return nil, errors.New("photos subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &CleanupConsumer{
		store:        store,
		bucket:       bucket,
		subscription: subscription,
		idem:         idem,
		decoders:     newPayloadDecoders(),
		logg:         logg,
	}, nil
}

func newPayloadDecoders() *registry.DecoderRegistry {
	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.EventPhotoDeleted, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.PhotoDeletedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
	decoders.Register(enums.EventStudioDeleted, 1, func(payload json.RawMessage) (interface{}, error) {
		var event payloads.StudioDeletedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return &event, nil
	})
	return decoders
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *CleanupConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *CleanupConsumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	attrs := parseAttributes(msg.Attributes)
	logCtx := c.logg.WithFields(ctx, c.buildLogFields(msg.ID, attrs))

	eventType := enums.OutboxEventType(attrs.EventType)
	switch eventType {
	case enums.EventPhotoDeleted, enums.EventStudioDeleted:
	default:
		// The photos topic also carries invitation events; they have no
		// storage side effects.
		c.logg.Info(logCtx, "skipping non-cleanup event")
		return processResult{ack: true}
	}

	payload, err := decodePayload(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		fields := c.buildLogFields(msg.ID, attrs)
		fields["payload_preview"] = previewBytes(payload, 800)
		fields["payload_len"] = len(payload)
		logCtx = c.logg.WithFields(ctx, fields)
		c.logg.Error(logCtx, "failed to unmarshal envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "envelope carries invalid event id", err)
		return processResult{ack: true}
	}

	if c.idem != nil {
		processed, err := c.idem.CheckAndMarkProcessed(ctx, consumerName, eventID)
		if err != nil {
			c.logg.Error(logCtx, "idempotency check failed", err)
			return processResult{nack: true}
		}
		if processed {
			c.logg.Info(logCtx, "event already processed")
			return processResult{ack: true}
		}
	}

	keys, err := c.objectKeys(eventType, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode event data", err)
		c.releaseMarker(ctx, eventID)
		return processResult{ack: true}
	}
	if len(keys) == 0 {
		c.logg.Warn(logCtx, "event carries no object keys")
		return processResult{ack: true}
	}

	deleted := 0
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if err := c.store.DeleteObject(ctx, c.bucket, key); err != nil {
			logCtx = c.logg.WithFields(logCtx, map[string]any{
				"object_key":      key,
				"objects_deleted": deleted,
			})
			c.logg.Error(logCtx, "failed to delete object", err)
			c.releaseMarker(ctx, eventID)
			return processResult{nack: true}
		}
		deleted++
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{"objects_deleted": deleted})
	c.logg.Info(logCtx, "processed storage cleanup event")
	return processResult{ack: true}
}

// releaseMarker drops the processed flag so a redelivery is not skipped
// after a partial failure.
func (c *CleanupConsumer) releaseMarker(ctx context.Context, eventID uuid.UUID) {
	if c.idem == nil {
		return
	}
	if err := c.idem.Delete(ctx, consumerName, eventID); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "event_id", eventID.String()), "failed to release idempotency marker")
	}
}

func (c *CleanupConsumer) objectKeys(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) ([]string, error) {
	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		return nil, err
	}
	switch event := decoded.(type) {
	case *payloads.PhotoDeletedEvent:
		return []string{event.ObjectKey}, nil
	case *payloads.StudioDeletedEvent:
		return event.ObjectKeys, nil
	default:
		return nil, fmt.Errorf("unsupported event type %q", eventType)
	}
}

func (c *CleanupConsumer) buildLogFields(messageID string, attrs eventAttributes) map[string]any {
	fields := map[string]any{
		"message_id": messageID,
		"event_type": attrs.EventType,
		"bucket":     c.bucket,
	}
	if attrs.EventID != "" {
		fields["event_id"] = attrs.EventID
	}
	if attrs.AggregateID != "" {
		fields["aggregate_id"] = attrs.AggregateID
	}
	return fields
}

func parseAttributes(attrs map[string]string) eventAttributes {
	return eventAttributes{
		EventID:       attrs["event_id"],
		EventType:     attrs["event_type"],
		AggregateType: attrs["aggregate_type"],
		AggregateID:   attrs["aggregate_id"],
	}
}

type eventAttributes struct {
	EventID       string
	EventType     string
	AggregateType string
	AggregateID   string
}

// decodePayload tolerates push-wrapped base64 bodies alongside raw JSON.
func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("payload empty")
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		return decoded, nil
	}
	return data, nil
}

func previewBytes(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	pkgkafka "github.com/bibbank/mortgage-advisor/pkg/kafka"
)

// Recommender is satisfied by usecase.GenerateRecommendationsUseCase.
type Recommender interface {
	Execute(ctx context.Context, req dto.GenerateRecommendationsRequest) (dto.RecommendationResponse, error)
}

// ApplicationSubmittedHandler generates recommendations for every submitted
// application it consumes.
type ApplicationSubmittedHandler struct {
	recommender Recommender
	logger      *slog.Logger
}

func NewApplicationSubmittedHandler(recommender Recommender, logger *slog.Logger) *ApplicationSubmittedHandler {
	return &ApplicationSubmittedHandler{recommender: recommender, logger: logger}
}

// Handle processes one message. Messages that can never succeed (foreign
// event types, malformed payloads, unknown applications) are logged and
// acknowledged; other failures are returned so the offset is not committed.
func (h *ApplicationSubmittedHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	if t := msg.Headers[HeaderEventType]; t != "" && t != event.TypeApplicationSubmitted {
		h.logger.DebugContext(ctx, "ignoring event", "event_type", t)
		return nil
	}

	var payload struct {
		EventID     string `json:"event_id"`
		AggregateID string `json:"aggregate_id"`
	}
	if err := json.Unmarshal(msg.Value, &payload); err != nil || payload.AggregateID == "" {
		h.logger.WarnContext(ctx, "dropping malformed application event",
			"key", string(msg.Key), "error", err)
		return nil
	}

	resp, err := h.recommender.Execute(ctx, dto.GenerateRecommendationsRequest{ApplicationID: payload.AggregateID})
	if errors.Is(err, port.ErrApplicationNotFound) {
		h.logger.WarnContext(ctx, "application from event not found",
			"application_id", payload.AggregateID, "event_id", payload.EventID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("generate recommendations for %s: %w", payload.AggregateID, err)
	}

	h.logger.InfoContext(ctx, "auto-recommendation generated",
		"application_id", payload.AggregateID,
		"recommendation_id", resp.ID,
	)
	return nil
}

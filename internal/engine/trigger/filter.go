package trigger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"phacetnode/internal/platform/models"
)

// RowFetcher performs the optional enrichment fetch. *phacet.Client
// satisfies it.
type RowFetcher interface {
	GetRow(ctx context.Context, tableID, rowID string) (map[string]any, error)
}

// Pipeline filters and reshapes inbound webhook deliveries. It holds no
// per-delivery state and is safe for concurrent deliveries.
type Pipeline struct {
	fetcher RowFetcher
}

func NewPipeline(fetcher RowFetcher) *Pipeline {
	return &Pipeline{fetcher: fetcher}
}

// Process handles one delivery for one subscription. It emits at most one
// record: zero when the event type or table filter does not match, one
// otherwise. Enrichment failures never suppress the base record.
func (p *Pipeline) Process(ctx context.Context, sub *models.Subscription, body []byte) ([]models.OutputRecord, error) {
	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("malformed delivery body: %w", err)
	}

	if event.EventType != sub.EventType {
		log.Debug().Str("node", sub.NodeID).Str("got", event.EventType).
			Str("want", sub.EventType).Msg("delivery filtered by event type")
		return nil, nil
	}

	// The event payload is the nested data object; fall back to the
	// whole body when the service sent a flat payload.
	payload := event.Data
	if payload == nil {
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("malformed delivery body: %w", err)
		}
	}

	payloadTable, _ := payload["tableId"].(string)
	if sub.TableID != "" && payloadTable != "" && payloadTable != sub.TableID {
		log.Debug().Str("node", sub.NodeID).Str("got", payloadTable).
			Str("want", sub.TableID).Msg("delivery filtered by table")
		return nil, nil
	}

	record := make(models.OutputRecord, len(payload)+3)
	for k, v := range payload {
		record[k] = v
	}
	record["eventType"] = event.EventType
	record["eventId"] = event.EventID

	tableID := sub.TableID
	if tableID == "" {
		tableID = payloadTable
	}
	if tableID != "" {
		record["tableId"] = tableID
	}

	if sub.Enrich {
		p.enrich(ctx, record, tableID, payload)
	}

	return []models.OutputRecord{record}, nil
}

// enrich fetches the full row named by the payload and attaches it under
// "row". Any failure here is swallowed; the base record still goes out.
func (p *Pipeline) enrich(ctx context.Context, record models.OutputRecord, tableID string, payload map[string]any) {
	rowID, _ := payload["rowId"].(string)
	if rowID == "" || tableID == "" {
		return
	}

	row, err := p.fetcher.GetRow(ctx, tableID, rowID)
	if err != nil {
		log.Warn().Err(err).Str("table", tableID).Str("row", rowID).
			Msg("enrichment fetch failed, emitting base record")
		return
	}
	record["row"] = row
}

// Package trigger implements the webhook trigger node: endpoint
// registration lifecycle and the per-delivery filter/enrich pipeline.
package trigger

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/rs/zerolog/log"
	"phacetnode/internal/phacet"
	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/models"
)

// EndpointRegistrar is the slice of the Phacet client the lifecycle
// needs. *phacet.Client satisfies it.
type EndpointRegistrar interface {
	RegisterEndpoint(ctx context.Context, reg phacet.EndpointRegistration) (*phacet.Endpoint, error)
	DeleteEndpoint(ctx context.Context, endpointID string) error
}

// SubscriptionStore persists the node's local subscription record.
// *repositories.SubscriptionRepository satisfies it.
type SubscriptionStore interface {
	Create(sub *models.Subscription) error
	GetByNodeID(nodeID string) (*models.Subscription, error)
	DeleteByNodeID(nodeID string) error
}

// Config is the trigger node configuration supplied at activation.
type Config struct {
	EventType string `json:"event_type"`
	TableID   string `json:"table_id,omitempty"` // empty means all tables
	Enrich    bool   `json:"enrich"`
	// KeepRemoteEndpoint leaves the remote registration in place on
	// deactivation. Repeated activations then accumulate remote
	// endpoints; that duplication is accepted, not silently repaired.
	KeepRemoteEndpoint bool   `json:"keep_remote_endpoint"`
	Description        string `json:"description,omitempty"`
}

type Lifecycle struct {
	store     SubscriptionStore
	registrar EndpointRegistrar
	publicURL string
}

func NewLifecycle(store SubscriptionStore, registrar EndpointRegistrar, publicURL string) *Lifecycle {
	return &Lifecycle{
		store:     store,
		registrar: registrar,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (l *Lifecycle) callbackURL(nodeID string) string {
	return l.publicURL + "/hooks/phacet/" + nodeID
}

// CheckExists reports whether a local subscription exists for the node
// and still matches the given configuration. The host uses it to decide
// whether Create must run again after a configuration change.
func (l *Lifecycle) CheckExists(ctx context.Context, nodeID string, cfg Config) (bool, error) {
	sub, err := l.store.GetByNodeID(nodeID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return sub.Matches(l.callbackURL(nodeID), cfg.EventType, cfg.TableID), nil
}

// Create registers a webhook endpoint with the remote service and
// persists the returned identifiers. A failed registration leaves no
// local state behind. The remote service does not de-duplicate: calling
// Create again without Delete registers a second remote endpoint.
func (l *Lifecycle) Create(ctx context.Context, nodeID string, cfg Config) (*models.Subscription, error) {
	if nodeID == "" {
		return nil, errors.NewValidation("node id is required")
	}
	if l.publicURL == "" {
		return nil, errors.NewValidation("no public URL configured, cannot resolve a webhook callback URL")
	}
	if cfg.EventType == "" {
		return nil, errors.NewValidation("event type is required")
	}
	if !models.KnownEventType(cfg.EventType) {
		return nil, errors.NewValidationf("unknown event type %q", cfg.EventType)
	}

	callback := l.callbackURL(nodeID)

	description := cfg.Description
	if description == "" {
		description = "phacetnode trigger " + nodeID
	}

	reg := phacet.EndpointRegistration{
		URL:         callback,
		EventTypes:  []string{cfg.EventType},
		Description: description,
	}
	if cfg.TableID != "" {
		reg.TableIDs = []string{cfg.TableID}
	}

	ep, err := l.registrar.RegisterEndpoint(ctx, reg)
	if err != nil {
		return nil, err
	}

	// Replace any stale local record; the old remote endpoint, if any,
	// is this node's responsibility to have deleted beforehand.
	if err := l.store.DeleteByNodeID(nodeID); err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		NodeID:      nodeID,
		EndpointID:  ep.EffectiveID(),
		Secret:      ep.Secret,
		CallbackURL: callback,
		EventType:   cfg.EventType,
		TableID:     cfg.TableID,
		Enrich:      cfg.Enrich,
		KeepRemote:  cfg.KeepRemoteEndpoint,
	}
	if err := l.store.Create(sub); err != nil {
		return nil, err
	}

	log.Info().Str("node", nodeID).Str("endpoint", sub.EndpointID).
		Str("event", cfg.EventType).Msg("webhook endpoint registered")

	return sub, nil
}

// Delete clears the local subscription and, unless the subscription was
// created with KeepRemoteEndpoint, best-effort deletes the remote
// endpoint. Remote failures are logged and swallowed; the endpoint may
// already be gone. Local state is cleared regardless.
func (l *Lifecycle) Delete(ctx context.Context, nodeID string) error {
	sub, err := l.store.GetByNodeID(nodeID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if sub.EndpointID != "" && !sub.KeepRemote {
		if err := l.registrar.DeleteEndpoint(ctx, sub.EndpointID); err != nil {
			log.Warn().Err(err).Str("node", nodeID).Str("endpoint", sub.EndpointID).
				Msg("remote endpoint deletion failed, clearing local state anyway")
		}
	}

	return l.store.DeleteByNodeID(nodeID)
}

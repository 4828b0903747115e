// Package cloudglue wires optional Google Cloud backends into a worker:
// new-coverage events published to Pub/Sub, periodic counters appended to
// BigQuery, and credentials resolved from Secret Manager rather than left on
// disk. Every piece is nil-safe when unconfigured so a local run never needs
// any of this.
package cloudglue

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Config selects which backends to enable. Empty fields leave the
// corresponding backend disabled.
type Config struct {
	ProjectID          string
	CoverageTopic      string
	CounterDataset     string
	CounterTable       string
	SecretResourceName string
}

// Glue holds the live clients for whichever backends Config enabled.
type Glue struct {
	cfg Config

	topic    *pubsub.Topic
	bq       *bigquery.Client
	secrets  *secretmanager.Client
}

// CoverageEvent is published whenever a worker observes new edges.
type CoverageEvent struct {
	Worker      string    `json:"worker"`
	Fingerprint string    `json:"fingerprint"`
	NewEdges    int       `json:"new_edges"`
	ObservedAt  time.Time `json:"observed_at"`
}

// CounterRow is one BigQuery append for a periodic metrics snapshot.
type CounterRow struct {
	Worker            string    `bigquery:"worker"`
	Timestamp         time.Time `bigquery:"timestamp"`
	ProgramsGenerated int64     `bigquery:"programs_generated"`
	CorpusSize        int64     `bigquery:"corpus_size"`
	Crashes           int64     `bigquery:"crashes"`
}

// Open connects whichever backends cfg names. Connection errors for a
// backend the caller didn't ask for are never possible, since an empty field
// short-circuits before any client is constructed.
func Open(ctx context.Context, cfg Config) (*Glue, error) {
	g := &Glue{cfg: cfg}

	if cfg.ProjectID != "" && cfg.CoverageTopic != "" {
		client, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("cloudglue: pubsub client: %w", err)
		}
		g.topic = client.Topic(cfg.CoverageTopic)
	}

	if cfg.ProjectID != "" && cfg.CounterDataset != "" {
		client, err := bigquery.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("cloudglue: bigquery client: %w", err)
		}
		g.bq = client
	}

	if cfg.SecretResourceName != "" {
		client, err := secretmanager.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("cloudglue: secretmanager client: %w", err)
		}
		g.secrets = client
	}

	return g, nil
}

// PublishCoverage sends ev to the coverage topic, a no-op when Pub/Sub isn't
// configured.
func (g *Glue) PublishCoverage(ctx context.Context, ev CoverageEvent) error {
	if g.topic == nil {
		return nil
	}
	data, err := encodeCoverageEvent(ev)
	if err != nil {
		return err
	}
	result := g.topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = result.Get(ctx)
	return err
}

// AppendCounters writes one snapshot row, a no-op when BigQuery isn't
// configured.
func (g *Glue) AppendCounters(ctx context.Context, row CounterRow) error {
	if g.bq == nil {
		return nil
	}
	inserter := g.bq.Dataset(g.cfg.CounterDataset).Table(g.cfg.CounterTable).Inserter()
	return inserter.Put(ctx, row)
}

// ResolveSecret fetches the latest version of the configured secret. Callers
// use this for API keys (e.g. the crash-triage summarizer's) instead of
// reading them from the environment.
func (g *Glue) ResolveSecret(ctx context.Context) (string, error) {
	if g.secrets == nil {
		return "", fmt.Errorf("cloudglue: secret manager not configured")
	}
	resp, err := g.secrets.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: g.cfg.SecretResourceName,
	})
	if err != nil {
		return "", fmt.Errorf("cloudglue: access secret: %w", err)
	}
	return string(resp.Payload.Data), nil
}

// Close releases every live client.
func (g *Glue) Close() error {
	var err error
	if g.topic != nil {
		g.topic.Stop()
	}
	if g.bq != nil {
		err = g.bq.Close()
	}
	if g.secrets != nil {
		if cerr := g.secrets.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

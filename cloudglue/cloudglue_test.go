package cloudglue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenWithEmptyConfigEnablesNothing(t *testing.T) {
	g, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	require.Nil(t, g.topic)
	require.Nil(t, g.bq)
	require.Nil(t, g.secrets)
}

func TestPublishCoverageNoopWithoutPubsub(t *testing.T) {
	g, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	err = g.PublishCoverage(context.Background(), CoverageEvent{Worker: "w1"})
	require.NoError(t, err)
}

func TestAppendCountersNoopWithoutBigQuery(t *testing.T) {
	g, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	err = g.AppendCounters(context.Background(), CounterRow{Worker: "w1"})
	require.NoError(t, err)
}

func TestResolveSecretErrorsWithoutSecretManager(t *testing.T) {
	g, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	_, err = g.ResolveSecret(context.Background())
	require.Error(t, err)
}

func TestEncodeCoverageEventIsValidJSON(t *testing.T) {
	data, err := encodeCoverageEvent(CoverageEvent{Worker: "w1", Fingerprint: "abc", NewEdges: 3})
	require.NoError(t, err)
	require.Contains(t, string(data), `"worker":"w1"`)
}

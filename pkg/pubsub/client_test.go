package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	require.Equal(t, "projects/p1/topics/domain", topicResourceName("p1", " domain "))
	require.Equal(t, "projects/x/topics/y", topicResourceName("p1", "projects/x/topics/y"))
	require.Empty(t, topicResourceName("", "domain"))
	require.Empty(t, topicResourceName("p1", ""))
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.PubSubConfig{DomainTopic: "d"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.PubSubConfig{ProjectID: "p"}, nil)
	require.ErrorIs(t, err, errTopicRequired)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	require.Nil(t, c.Publisher("x"))
	require.NoError(t, c.Close())
	require.Error(t, c.Ping(context.Background()))
}

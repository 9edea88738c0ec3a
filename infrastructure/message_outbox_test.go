package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageOutbox_FlushInOrder(t *testing.T) {
	t.Parallel()

	client := &fakeBusClient{}
	outbox := NewMessageOutbox(client)
	ctx := context.Background()

	require.NoError(t, outbox.Publish(ctx, SubjectYieldRedeem, []byte("1")))
	require.NoError(t, outbox.Publish(ctx, SubjectTokenTransfer, []byte("2")))
	assert.Equal(t, 2, outbox.Len())
	assert.Empty(t, client.subjects(), "nothing leaves before flush")

	require.NoError(t, outbox.Flush(ctx))
	assert.Equal(t, []string{SubjectYieldRedeem, SubjectTokenTransfer}, client.subjects())
	assert.Zero(t, outbox.Len())
}

func TestMessageOutbox_Discard(t *testing.T) {
	t.Parallel()

	client := &fakeBusClient{}
	outbox := NewMessageOutbox(client)
	ctx := context.Background()

	require.NoError(t, outbox.Publish(ctx, SubjectYieldDeposit, []byte("x")))
	outbox.Discard()
	require.NoError(t, outbox.Flush(ctx))

	assert.Empty(t, client.subjects())
}

func TestMessageOutbox_FlushReportsFailures(t *testing.T) {
	t.Parallel()

	client := &fakeBusClient{publishErr: errors.New("nats down")}
	outbox := NewMessageOutbox(client)
	ctx := context.Background()

	require.NoError(t, outbox.Publish(ctx, SubjectYieldDeposit, []byte("x")))
	require.NoError(t, outbox.Publish(ctx, SubjectTokenTransfer, []byte("y")))

	err := outbox.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish 2 outbound messages")
	assert.Zero(t, outbox.Len())
}

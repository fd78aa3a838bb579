package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/favnum/internal/ir"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TopicRecordUpdated, RecordUpdated{}))
	assert.NoError(t, p.Close())
}

func TestRecorderCapturesInOrder(t *testing.T) {
	r := NewRecorder(nil)
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, TopicConfigInitialized, ConfigInitialized{}))
	require.NoError(t, r.Publish(ctx, TopicRecordUpdated, RecordUpdated{Value: 5}))

	got := r.Events()
	require.Len(t, got, 2)
	assert.Equal(t, TopicConfigInitialized, got[0].Topic)
	assert.Equal(t, TopicRecordUpdated, got[1].Topic)
	assert.Equal(t, uint64(5), got[1].Event.(RecordUpdated).Value)
}

func TestRecorderFailure(t *testing.T) {
	boom := errors.New("broker down")
	r := NewRecorder(boom)

	err := r.Publish(context.Background(), TopicRecordUpdated, RecordUpdated{})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, r.Events(), 1)
}

func TestRecordUpdatedJSON(t *testing.T) {
	ev := RecordUpdated{
		Address: ir.Address{0xab},
		Owner:   ir.Identity{0x01},
		Value:   9,
		By:      ir.Identity{0x02},
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, ev.Address.String(), m["address"])
	assert.Equal(t, ev.Owner.String(), m["owner"])
	assert.Equal(t, ev.By.String(), m["by"])
	assert.Equal(t, float64(9), m["value"])
	assert.Equal(t, false, m["created"])
}

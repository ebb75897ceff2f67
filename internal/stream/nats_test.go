package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ecg-synth/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu   sync.Mutex
	msgs []message
	fail error
}

type message struct {
	subject string
	data    []byte
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.msgs = append(f.msgs, message{subject: subj, data: data})
	return nil
}

func TestEncodeDecodeFloat32(t *testing.T) {
	raw := EncodeFloat32LE([]float64{0, 1.5, -0.25})
	require.Len(t, raw, 12)
	out, err := DecodeFloat32LE(raw)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1.5, -0.25}, out)

	_, err = DecodeFloat32LE([]byte{1, 2})
	assert.Error(t, err)
}

func TestBatches(t *testing.T) {
	b := Batches([]float64{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5}}, b)
	assert.Empty(t, Batches(nil, 3))
	assert.Len(t, Batches(make([]float64, 25), 0), 3)
}

func TestPublishSignal(t *testing.T) {
	conn := &fakeConn{}
	p := &Publisher{Conn: conn, Batch: 4}
	n, err := p.PublishSignal(context.Background(), make([]float64, 10), 500, false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, conn.msgs, 3)
	assert.Equal(t, DefaultSubject, conn.msgs[0].subject)
	assert.Len(t, conn.msgs[2].data, 8)
}

func TestPublishSignalRealtimeCancel(t *testing.T) {
	conn := &fakeConn{}
	p := &Publisher{Conn: conn, Subject: "test.wave", Batch: 1}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// one sample per second: only the first batch goes out before the deadline
	n, err := p.PublishSignal(ctx, make([]float64, 100), 1, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, n)
}

func TestPublishSignalError(t *testing.T) {
	p := &Publisher{Conn: &fakeConn{fail: errors.New("down")}}
	_, err := p.PublishSignal(context.Background(), []float64{1}, 500, false)
	assert.ErrorContains(t, err, "down")

	_, err = (&Publisher{}).PublishSignal(context.Background(), []float64{1}, 500, false)
	assert.Error(t, err)
}

func TestPublishMeta(t *testing.T) {
	conn := &fakeConn{}
	p := &Publisher{Conn: conn}
	require.NoError(t, p.PublishMeta(model.Metadata{SamplingRateHz: 250, BeatCount: 3}))
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, ParamsSubject, conn.msgs[0].subject)
	assert.Contains(t, string(conn.msgs[0].data), `"sampling_rate_hz":250`)
}

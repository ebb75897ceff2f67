// Package stream publishes synthesized signals as little-endian float32 frames.
package stream

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"ecg-synth/internal/model"

	"github.com/nats-io/nats.go"
)

const (
	DefaultSubject = "ecg.wave"
	ParamsSubject  = "ecg.params"
	DefaultBatch   = 10
)

func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("ecg-synth"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

// EncodeFloat32LE packs samples as 4-byte little-endian floats.
func EncodeFloat32LE(samples []float64) []byte {
	out := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
	}
	return out
}

// DecodeFloat32LE is the inverse of EncodeFloat32LE.
func DecodeFloat32LE(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("frame length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

// Batches splits signal into consecutive chunks of at most size samples.
func Batches(signal []float64, size int) [][]float64 {
	if size <= 0 {
		size = DefaultBatch
	}
	out := make([][]float64, 0, (len(signal)+size-1)/size)
	for start := 0; start < len(signal); start += size {
		out = append(out, signal[start:min(start+size, len(signal))])
	}
	return out
}

type Publisher struct {
	Conn    Conn
	Subject string
	Batch   int
}

// PublishMeta sends the run metadata as JSON on ParamsSubject.
func (p *Publisher) PublishMeta(meta model.Metadata) error {
	if p.Conn == nil {
		return errors.New("publisher has no connection")
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return p.Conn.Publish(ParamsSubject, raw)
}

// PublishSignal sends signal in batches. With realtime set, consecutive batches are
// spaced by batch/fs so consumers see the recording at its natural rate.
// It returns the number of batches sent.
func (p *Publisher) PublishSignal(ctx context.Context, signal []float64, fs float64, realtime bool) (int, error) {
	if p.Conn == nil {
		return 0, errors.New("publisher has no connection")
	}
	subject := p.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	batches := Batches(signal, p.Batch)

	var ticker *time.Ticker
	if realtime && fs > 0 && len(batches) > 1 {
		period := time.Duration(float64(len(batches[0])) / fs * float64(time.Second))
		ticker = time.NewTicker(period)
		defer ticker.Stop()
	}

	sent := 0
	for i, b := range batches {
		if i > 0 && ticker != nil {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := p.Conn.Publish(subject, EncodeFloat32LE(b)); err != nil {
			return sent, fmt.Errorf("publish batch %d: %w", i, err)
		}
		sent++
	}
	return sent, nil
}

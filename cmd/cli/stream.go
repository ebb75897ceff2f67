package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"ecg-synth/internal/model"
	"ecg-synth/internal/preset"
	"ecg-synth/internal/stream"
	"ecg-synth/internal/synth"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStreamCmd(a *app) *cobra.Command {
	var (
		natsURL    string
		subject    string
		presetName string
		batch      int
		realtime   bool
	)
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Publish a simulated record to NATS as float32 frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			nc, err := stream.Connect(natsURL)
			if err != nil {
				return fmt.Errorf("connect %s: %w", natsURL, err)
			}
			defer nc.Drain()

			pub := &stream.Publisher{Conn: nc, Subject: subject, Batch: batch}
			return runStream(ctx, cmd.OutOrStdout(), a.logger, pub, presetName, realtime)
		},
	}
	f := cmd.Flags()
	f.StringVar(&natsURL, "nats", envOr("NATS_URL", nats.DefaultURL), "NATS url")
	f.StringVar(&subject, "subject", stream.DefaultSubject, "subject for sample frames")
	f.StringVarP(&presetName, "preset", "p", preset.DefaultName, "preset to stream")
	f.IntVar(&batch, "batch", stream.DefaultBatch, "samples per message")
	f.BoolVar(&realtime, "realtime", true, "pace messages at the sampling rate")
	return cmd
}

func runStream(ctx context.Context, out io.Writer, logger *zap.Logger, pub *stream.Publisher, presetName string, realtime bool) error {
	res, err := synth.New(logger).Run(preset.Resolve(presetName))
	if err != nil {
		return err
	}
	if err := pub.PublishMeta(res.Meta); err != nil {
		return err
	}
	sent, err := pub.PublishSignal(ctx, res.Signal, float64(res.Meta.SamplingRateHz), realtime)
	logger.Info("stream finished", zap.String("preset", presetName), zap.Int("messages", sent), zap.Error(err))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Published %d samples in %d messages\n", len(res.Signal), sent)
	return nil
}

// hrMessage is published on the params subject for each detected beat.
type hrMessage struct {
	Sample int     `json:"sample"`
	HR     float64 `json:"hr_bpm"`
}

func newListenCmd(a *app) *cobra.Command {
	var (
		natsURL   string
		subject   string
		out       string
		fs        int
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Consume float32 frames from NATS and report heart rate per beat",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			nc, err := stream.Connect(natsURL)
			if err != nil {
				return fmt.Errorf("connect %s: %w", natsURL, err)
			}
			defer nc.Drain()

			metaSub, err := nc.Subscribe(stream.ParamsSubject, func(msg *nats.Msg) {
				var meta model.Metadata
				if err := json.Unmarshal(msg.Data, &meta); err == nil && meta.SamplingRateHz > 0 {
					a.logger.Info("stream metadata", zap.Int("fs", meta.SamplingRateHz), zap.Int("beats", meta.BeatCount))
				}
			})
			if err != nil {
				return err
			}
			defer metaSub.Unsubscribe()

			mon := stream.NewHRMonitor(float64(fs), threshold)
			sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				bpms, err := mon.Feed(msg.Data)
				if err != nil {
					a.logger.Warn("bad frame", zap.Error(err))
					return
				}
				for _, bpm := range bpms {
					fmt.Fprintf(cmd.OutOrStdout(), "HR detected: %.1f BPM\n", bpm)
					raw, _ := json.Marshal(hrMessage{Sample: mon.Samples(), HR: bpm})
					_ = nc.Publish(out, raw)
				}
			})
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			a.logger.Info("listening", zap.String("subject", subject))
			<-ctx.Done()
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&natsURL, "nats", envOr("NATS_URL", nats.DefaultURL), "NATS url")
	f.StringVar(&subject, "subject", stream.DefaultSubject, "subject to consume")
	f.StringVar(&out, "out", "ecg.hr", "subject for detected heart rate messages")
	f.IntVar(&fs, "fs", 500, "sampling rate of the incoming frames in Hz")
	f.Float64Var(&threshold, "threshold", 0.6, "R-peak detection threshold in mV")
	return cmd
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"ecg-synth/internal/api/models"
	"ecg-synth/internal/preset"
	"ecg-synth/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a websocket to stream.Conn; every publish is one binary frame.
type wsConn struct {
	conn *websocket.Conn
}

func (w wsConn) Publish(_ string, data []byte) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Stream handles GET /ws/stream. It sends one JSON header frame, the signal as binary
// float32 frames, then a normal close.
func (h *SimulationHandler) Stream(c *gin.Context) {
	var q models.StreamQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if q.Batch < 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "batch must be >= 0", nil)
		return
	}
	if q.Batch == 0 {
		q.Batch = stream.DefaultBatch
	}

	cfg := preset.Resolve(q.Preset)
	if !h.checkSize(c, cfg, nil) {
		return
	}
	label := presetLabel(q.Preset)
	res, _, err := h.run(cfg, label)
	if err != nil {
		respondSimulationError(c, err, nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	// Reader loop: notices client close so pacing stops early.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(models.StreamHeader{
		Preset:  label,
		Meta:    res.Meta,
		Samples: len(res.Signal),
		Batch:   q.Batch,
		Format:  "float32le",
	}); err != nil {
		return
	}

	pub := &stream.Publisher{Conn: wsConn{conn: conn}, Batch: q.Batch}
	sent, err := pub.PublishSignal(ctx, res.Signal, float64(res.Meta.SamplingRateHz), q.Realtime)
	if err != nil {
		h.logger.Debug("stream ended early", zap.Int("frames", sent), zap.Error(err))
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(wsWriteTimeout))
}

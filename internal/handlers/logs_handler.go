package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LogsHandler struct {
	mu  sync.Mutex
	out io.Writer
}

type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level" binding:"omitempty,oneof=debug info warn error"`
	Message   string                 `json:"message" binding:"required,max=2000"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type LogBatchRequest struct {
	Logs []LogEntry `json:"logs" binding:"required,max=100,dive"`
}

// NewLogsHandler writes browser logs to frontend.log in logDir, rotated
// like the service logs.
func NewLogsHandler(logDir string) (*LogsHandler, error) {
	w, err := logger.NewFileWriter(logDir, "frontend.log")
	if err != nil {
		return nil, err
	}
	return &LogsHandler{out: w}, nil
}

func newLogsHandlerWithWriter(out io.Writer) *LogsHandler {
	return &LogsHandler{out: out}
}

func (h *LogsHandler) ReceiveFrontendLogs(c *gin.Context) {
	var req LogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if len(req.Logs) == 0 {
		respondError(c, http.StatusBadRequest, "No logs provided", nil)
		return
	}

	if err := h.writeLogs(req.Logs); err != nil {
		logger.Error("Failed to write frontend logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to write logs", err)
		return
	}

	logger.Debug("Received frontend logs", zap.Int("count", len(req.Logs)))
	c.JSON(http.StatusOK, gin.H{"success": true, "received": len(req.Logs)})
}

func (h *LogsHandler) writeLogs(logs []LogEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	// One JSON line per entry, in the backend log format
	encoder := json.NewEncoder(h.out)
	for _, entry := range logs {
		logLine := map[string]interface{}{
			"ts":      entry.Timestamp,
			"level":   entry.Level,
			"msg":     entry.Message,
			"service": "browser",
		}
		for k, v := range entry.Context {
			if _, reserved := logLine[k]; !reserved {
				logLine[k] = v
			}
		}

		if err := encoder.Encode(logLine); err != nil {
			return fmt.Errorf("failed to encode log entry: %w", err)
		}
	}

	return nil
}

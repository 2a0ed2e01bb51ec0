package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paymentsops/ipn-ingest/internal/extract"
	"github.com/paymentsops/ipn-ingest/internal/models"
)

// Recorder persists one transaction record idempotently. inserted=false means
// a row for the same transaction id already existed (duplicate delivery).
type Recorder interface {
	UpsertTransaction(ctx context.Context, rec models.TransactionRecord) (inserted bool, err error)
}

// RegisterIPNRoutes mounts the notification pipeline on each configured path.
//
// POST <path>
// - Requires valid credentials (either configured scheme)
// - Empty body or {}: liveness probe, always 200
// - Non-empty body without TransactionId: 400, bank must not retry
// - Stored or duplicate: 200, bank stops retrying
// - Persistence failure: 500, bank retries later
func RegisterIPNRoutes(r gin.IRoutes, paths []string, rec Recorder, logger *slog.Logger) {
	for _, path := range paths {
		r.POST(path, ipnHandler(rec, logger))
	}
}

func ipnHandler(rec Recorder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.IPNResponse{
				MessageCode: "400",
				Message:     "Unreadable request body",
			})
			return
		}

		// The bank's keepalive cron POSTs an empty body (or {}) on a schedule.
		// It must see 200 or the bank flags the endpoint as failing.
		body = bytes.TrimSpace(body)
		if len(body) == 0 {
			c.JSON(http.StatusOK, models.IPNResponse{
				MessageCode: "200",
				Message:     "Ping received",
			})
			return
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			c.JSON(http.StatusBadRequest, models.IPNResponse{
				MessageCode: "400",
				Message:     "Invalid JSON payload",
			})
			return
		}
		if len(fields) == 0 {
			c.JSON(http.StatusOK, models.IPNResponse{
				MessageCode: "200",
				Message:     "Ping received",
			})
			return
		}

		// A non-empty body without a transaction id is a malformed real
		// notification, not a probe.
		var note models.Notification
		if err := json.Unmarshal(body, &note); err != nil {
			c.JSON(http.StatusBadRequest, models.IPNResponse{
				MessageCode: "400",
				Message:     "Invalid JSON payload",
			})
			return
		}
		if strings.TrimSpace(note.TransactionID) == "" {
			c.JSON(http.StatusBadRequest, models.IPNResponse{
				MessageCode: "400",
				Message:     "Missing required field TransactionId",
			})
			return
		}

		// Extraction is enrichment, never a gate: empty derived fields are
		// persisted rather than rejecting the notification.
		record := models.TransactionRecord{
			Notification:   note,
			FinalReference: extract.Reference(note.CustMemoLine1, note.Narration),
			MobileNumber:   extract.MobileNumber(note.Narration),
		}

		inserted, err := rec.UpsertTransaction(c.Request.Context(), record)
		if err != nil {
			logger.Error("transaction upsert failed",
				"transaction_id", note.TransactionID,
				"error", err)
			// 500 is the retry signal: the bank redelivers later.
			c.JSON(http.StatusInternalServerError, models.IPNResponse{
				MessageCode: "500",
				Message:     "Database error",
			})
			return
		}

		logger.Info("notification recorded",
			"transaction_id", note.TransactionID,
			"final_reference", record.FinalReference,
			"event_type", note.EventType,
			"duplicate", !inserted)

		c.JSON(http.StatusOK, models.IPNResponse{
			MessageCode:   "200",
			Message:       "Successfully received data",
			TransactionID: note.TransactionID,
			Reference:     record.FinalReference,
		})
	}
}

package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Recorder persists the outcome of a notification attempt for audit.
type Recorder interface {
	RecordNotification(ctx context.Context, complaintID, channel, status, detail string) error
}

// Sender is the provider call the dispatcher wraps; satisfied by *Client.
type Sender interface {
	Send(ctx context.Context, target, message string) Result
}

// Dispatcher sends WhatsApp notifications and records their outcomes.
// Receipt messages are fired on a goroutine so the HTTP response to the
// submitter never waits on the provider.
type Dispatcher struct {
	sender   Sender
	recorder Recorder
	limiter  *rate.Limiter
	log      zerolog.Logger
}

func NewDispatcher(sender Sender, recorder Recorder, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		recorder: recorder,
		// Fonnte throttles bursts from a single token; one message per
		// second with a small burst keeps the account out of trouble.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		log:     log.With().Str("component", "notify").Logger(),
	}
}

// SendAndRecord sends one message synchronously and persists the outcome.
func (d *Dispatcher) SendAndRecord(ctx context.Context, complaintID, kind, target, message string) Result {
	if err := d.limiter.Wait(ctx); err != nil {
		d.log.Warn().Err(err).Str("complaint_id", complaintID).Msg("antrian notifikasi dibatalkan")
		return failure("SEND_FAILED")
	}

	result := d.sender.Send(ctx, target, message)

	status := "FAILED"
	if result.Success {
		status = "SUCCESS"
	}
	detail, _ := json.Marshal(map[string]json.RawMessage{
		"kind":     json.RawMessage(`"` + kind + `"`),
		"response": result.Raw,
	})
	if err := d.recorder.RecordNotification(ctx, complaintID, "WHATSAPP", status, string(detail)); err != nil {
		d.log.Error().Err(err).Str("complaint_id", complaintID).Msg("gagal simpan catatan notifikasi")
	}

	if !result.Success {
		d.log.Warn().
			Str("complaint_id", complaintID).
			Str("kind", kind).
			Str("detail", result.Detail).
			Msg("gagal kirim notifikasi WhatsApp")
	}
	return result
}

// DispatchAsync is the fire-and-forget path used after a submission is
// accepted. Failures are logged and recorded but never surface to the
// submitting request.
func (d *Dispatcher) DispatchAsync(complaintID, kind, target, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		d.SendAndRecord(ctx, complaintID, kind, target, message)
	}()
}

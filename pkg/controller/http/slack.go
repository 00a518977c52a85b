package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bonk/pkg/domain/model"
	"github.com/secmon-lab/bonk/pkg/usecase/chain"
	"github.com/secmon-lab/bonk/pkg/utils/async"
	"github.com/secmon-lab/bonk/pkg/utils/errutil"
	"github.com/secmon-lab/bonk/pkg/utils/logging"
	"github.com/slack-go/slack/slackevents"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const slackBodyKey contextKey = "slack_body"

// verifySlackSignature verifies the Slack request signature
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}

	if signature == "" {
		return goerr.New("missing signature")
	}

	// Reject replays older than 5 minutes
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	now := time.Now().Unix()
	if now-ts > 60*5 {
		return goerr.New("timestamp too old", goerr.V("timestamp", timestamp), goerr.V("now", now))
	}

	// Compute expected signature
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	// Compare signatures in constant time
	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware creates a middleware that verifies Slack request signatures
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Read body
			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer func() {
				if err := r.Body.Close(); err != nil {
					logging.From(ctx).Error("failed to close request body", "error", err)
				}
			}()

			// Get headers
			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			// Verify signature
			if err := verifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "slack signature verification failed"), http.StatusUnauthorized)
				return
			}

			// Keep the verified body for the webhook handler and restore it to the request
			ctx = context.WithValue(ctx, slackBodyKey, body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			// Call next handler
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SlackEventConverter turns Slack events into platform independent events
type SlackEventConverter interface {
	MessageEvent(ctx context.Context, teamID string, ev *slackevents.MessageEvent) *model.MessageEvent
	ReactionEvent(ctx context.Context, teamID string, ev *slackevents.ReactionAddedEvent) (*model.ReactionEvent, error)
}

// EventHandler runs the handler chains
type EventHandler interface {
	HandleMessage(ctx context.Context, ev *model.MessageEvent) (*chain.Report, error)
	HandleReaction(ctx context.Context, ev *model.ReactionEvent) (*chain.Report, error)
}

// SlackWebhookHandler handles Slack Events API webhook requests
type SlackWebhookHandler struct {
	converter SlackEventConverter
	handler   EventHandler
}

func NewSlackWebhookHandler(converter SlackEventConverter, handler EventHandler) *SlackWebhookHandler {
	return &SlackWebhookHandler{
		converter: converter,
		handler:   handler,
	}
}

func (h *SlackWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Already verified by middleware
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var r *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &r); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(r.Challenge)); err != nil {
			logging.From(ctx).Error("failed to write challenge response", "error", err)
		}
		return

	case slackevents.CallbackEvent:
		// Slack retries anything not acknowledged within 3 seconds
		w.WriteHeader(http.StatusOK)

		teamID := eventsAPIEvent.TeamID
		switch ev := eventsAPIEvent.InnerEvent.Data.(type) {
		case *slackevents.MessageEvent:
			async.Dispatch(ctx, func(ctx context.Context) error {
				msg := h.converter.MessageEvent(ctx, teamID, ev)
				if msg == nil {
					return nil
				}
				if _, err := h.handler.HandleMessage(ctx, msg); err != nil {
					return goerr.Wrap(err, "failed to handle slack message", goerr.V("team_id", teamID))
				}
				return nil
			})

		case *slackevents.ReactionAddedEvent:
			async.Dispatch(ctx, func(ctx context.Context) error {
				reaction, err := h.converter.ReactionEvent(ctx, teamID, ev)
				if err != nil {
					return goerr.Wrap(err, "failed to convert slack reaction", goerr.V("team_id", teamID))
				}
				if reaction == nil {
					return nil
				}
				if _, err := h.handler.HandleReaction(ctx, reaction); err != nil {
					return goerr.Wrap(err, "failed to handle slack reaction", goerr.V("team_id", teamID))
				}
				return nil
			})

		default:
			logging.From(ctx).Debug("ignored slack callback event", "type", eventsAPIEvent.InnerEvent.Type)
		}

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}

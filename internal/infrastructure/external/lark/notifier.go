// Package lark pushes review notifications to the reviewer's Lark chat.
package lark

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apdesk/apdesk/internal/application/port"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Config holds Lark app credentials and the notification target
type Config struct {
	AppID          string
	AppSecret      string
	ReviewerOpenID string
}

// Notifier implements port.Notifier over the Lark IM API
type Notifier struct {
	client         *lark.Client
	reviewerOpenID string
	logger         *zap.Logger
}

// NewNotifier creates a new Lark notifier
func NewNotifier(cfg Config, logger *zap.Logger) *Notifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &Notifier{
		client:         client,
		reviewerOpenID: cfg.ReviewerOpenID,
		logger:         logger,
	}
}

// NotifyReviewer sends a text message to the configured reviewer.
func (n *Notifier) NotifyReviewer(ctx context.Context, subject, body string) error {
	if n.reviewerOpenID == "" {
		n.logger.Debug("No reviewer configured, skipping notification")
		return nil
	}

	content, err := json.Marshal(map[string]string{
		"text": subject + "\n" + body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("open_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.reviewerOpenID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("receive_id", n.reviewerOpenID),
			zap.Error(err))
		return fmt.Errorf("failed to send notification: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	n.logger.Info("Reviewer notified",
		zap.String("message_id", messageID),
		zap.String("subject", subject))

	return nil
}

// Verify interface compliance
var _ port.Notifier = (*Notifier)(nil)

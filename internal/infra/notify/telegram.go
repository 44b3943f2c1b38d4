package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramSink delivers messages to a Telegram chat. The channel target is
// the numeric chat id.
type TelegramSink struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewTelegramSink(token string, logger *zap.Logger) (*TelegramSink, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramSink{api: api, logger: logger}, nil
}

func (s *TelegramSink) Kind() domain.ChannelKind { return domain.ChannelTelegram }

func (s *TelegramSink) Send(ctx context.Context, target string, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", target, err)
	}

	text := msg.Subject + "\n\n" + msg.Body
	if _, err := s.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		s.logger.Warn("telegram delivery failed",
			zap.Uint("alert_id", msg.AlertID),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

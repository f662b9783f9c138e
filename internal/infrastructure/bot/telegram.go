package bot

import (
	"context"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/paydesk/backend/internal/application/chatbot"
	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/infrastructure/config"
)

const (
	callbackMethodPrefix = "method_"

	welcomeText = "👋 Welcome to PayDesk Payment Bot!\n\n" +
		"💡 How to use:\n" +
		"Simply send a message like:\n" +
		"\"Joel paid 3000\"\n" +
		"\"Received 5000 from ABC Company\"\n" +
		"\"John Doe payment 1500\"\n\n" +
		"I will automatically:\n" +
		"✅ Find the customer\n" +
		"✅ Find their unpaid invoice\n" +
		"✅ Record the payment\n" +
		"✅ Update the status\n\n" +
		"Try it now! 🚀"

	helpText = "📖 Payment Bot Help\n\n" +
		"✅ Supported formats:\n" +
		"• \"Customer paid Amount\"\n" +
		"• \"Received Amount from Customer\"\n" +
		"• \"Customer payment Amount\"\n\n" +
		"💡 Examples:\n" +
		"• Joel paid 3000\n" +
		"• Received Rs 5000 from ABC Company\n" +
		"• John Doe payment 1500\n\n" +
		"🔍 The bot will:\n" +
		"1. Parse your message using AI\n" +
		"2. Find matching customer\n" +
		"3. Smart match to invoice:\n" +
		"   • Exact amount match (if available)\n" +
		"   • Or oldest unpaid invoice\n" +
		"4. Record payment automatically\n" +
		"5. Update invoice status"
)

// TelegramBot runs the payment recording dialogue over Telegram long polling.
// Each chat is one conversation session; the session key handed to the
// Conversation is the chat ID.
type TelegramBot struct {
	api          *tgbotapi.BotAPI
	conversation *chatbot.Conversation
	pollTimeout  int
	logger       *zap.Logger

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTelegramBot connects to the Telegram API and verifies the token.
func NewTelegramBot(cfg config.TelegramConfig, conversation *chatbot.Conversation, logger *zap.Logger) (*TelegramBot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug

	pollTimeout := int(cfg.PollTimeout.Seconds())
	if pollTimeout <= 0 {
		pollTimeout = 30
	}

	logger.Info("connected to telegram", zap.String("bot", api.Self.UserName))

	return &TelegramBot{
		api:          api,
		conversation: conversation,
		pollTimeout:  pollTimeout,
		logger:       logger.Named("telegram"),
	}, nil
}

// Start begins polling for updates. It returns once the polling goroutine is
// running; call Stop to shut it down.
func (b *TelegramBot) Start(ctx context.Context) {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(updateCfg)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				b.handleUpdate(ctx, update)
			}
		}
	}()

	b.logger.Info("bot is now active and listening")
}

// Stop ends polling and waits for in-flight updates to finish.
func (b *TelegramBot) Stop() {
	b.stopOnce.Do(func() {
		b.api.StopReceivingUpdates()
	})
	b.wg.Wait()
}

func (b *TelegramBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic handling update", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func (b *TelegramBot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.send(msg.Chat.ID, welcomeText)
	case "help":
		b.send(msg.Chat.ID, helpText)
	}
}

func (b *TelegramBot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.send(chatID, "🤖 Processing your payment message...")

	reply := b.conversation.HandleMessage(ctx, sessionKey(chatID), msg.Text)

	out := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.AskMethod {
		out.ReplyMarkup = methodKeyboard()
	}
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *TelegramBot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := query.Data
	if !strings.HasPrefix(data, callbackMethodPrefix) {
		b.answerCallback(query.ID, "")
		return
	}

	method, err := invoicing.ParsePaymentMethod(strings.TrimPrefix(data, callbackMethodPrefix))
	if err != nil {
		b.answerCallback(query.ID, "")
		b.send(query.Message.Chat.ID, "❌ Unknown payment method. Please send the payment message again.")
		return
	}

	chatID := query.Message.Chat.ID
	reply := b.conversation.HandleMethodSelection(ctx, sessionKey(chatID), method)

	// Clears the loading spinner on the inline button.
	b.answerCallback(query.ID, "Payment method: "+method.String())

	// Replace the method prompt with the outcome so the chat does not keep
	// a stale keyboard around.
	edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, reply.Text)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit method prompt, sending fresh message",
			zap.Int64("chat_id", chatID), zap.Error(err))
		b.send(chatID, reply.Text)
	}
}

func (b *TelegramBot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *TelegramBot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warn("failed to answer callback query", zap.Error(err))
	}
}

func methodKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📱 GPay", callbackMethodPrefix+"gpay"),
			tgbotapi.NewInlineKeyboardButtonData("💵 Cash", callbackMethodPrefix+"cash"),
		),
	)
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

package notify

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the part of *tgbotapi.BotAPI the notifier needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram delivers messages through a Telegram bot. Users and channels
// are both addressed by their numeric chat id. Catalog markup is sent as
// Telegram HTML.
type Telegram struct {
	bot Bot
}

func NewTelegram(bot Bot) *Telegram {
	return &Telegram{bot: bot}
}

// NewTelegramBot connects to the Bot API with token.
func NewTelegramBot(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}
	return NewTelegram(bot), nil
}

var telegramMarkup = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?s)\*\*(.+?)\*\*`), "<b>$1</b>"},
	{regexp.MustCompile(`(?s)~~(.+?)~~`), "<s>$1</s>"},
	{regexp.MustCompile(`(?s)__(.+?)__`), "<u>$1</u>"},
	{regexp.MustCompile(`&lt;@(\d+)&gt;`), `<a href="tg://user?id=$1">@$1</a>`},
}

// telegramHTML escapes text and turns catalog markup into Telegram HTML.
func telegramHTML(text string) string {
	out := html.EscapeString(text)
	for _, m := range telegramMarkup {
		out = m.re.ReplaceAllString(out, m.repl)
	}
	return out
}

func (t *Telegram) Send(ctx context.Context, to Destination, text string) (Sent, error) {
	chatID, err := strconv.ParseInt(to.ID, 10, 64)
	if err != nil {
		return Sent{}, fmt.Errorf("%w: invalid chat id %q", ErrUndeliverable, to.ID)
	}

	cfg := tgbotapi.NewMessage(chatID, telegramHTML(text))
	cfg.ParseMode = tgbotapi.ModeHTML
	msg, err := t.bot.Send(cfg)
	if err != nil {
		return Sent{}, fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	return Sent{To: to, MessageID: strconv.Itoa(msg.MessageID), Text: text}, nil
}

func (t *Telegram) Edit(ctx context.Context, sent Sent, text string) error {
	return t.edit(sent, telegramHTML(text))
}

// Void strikes the original text through and adds note in italics.
func (t *Telegram) Void(ctx context.Context, sent Sent, note string) error {
	return t.edit(sent, "<s>"+telegramHTML(sent.Text)+"</s>\n<i>"+html.EscapeString(note)+"</i>")
}

func (t *Telegram) edit(sent Sent, body string) error {
	chatID, err := strconv.ParseInt(sent.To.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid chat id %q", ErrUndeliverable, sent.To.ID)
	}
	messageID, err := strconv.Atoi(sent.MessageID)
	if err != nil {
		return fmt.Errorf("%w: invalid message id %q", ErrUndeliverable, sent.MessageID)
	}

	cfg := tgbotapi.NewEditMessageText(chatID, messageID, body)
	cfg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrUndeliverable, err)
	}
	return nil
}

// Package telegram posts emergency complaint alerts to an admin Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	queueSize      = 32
	maxDescription = 500
)

// Sender is the part of *tgbotapi.BotAPI the alerter uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type ProfileLookup interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
}

// Alerter receives complaint change events and forwards new emergency
// complaints to ChatID. Sending happens in Run, never on the caller's path.
type Alerter struct {
	Bot       Sender
	ChatID    int64
	Profiles  ProfileLookup
	Localizer *localization.Localizer

	queue chan models.Complaint
	log   *slog.Logger
}

// NewBotAPI authorizes the bot token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	bot.Debug = false
	logging.Component("telegram").Info("authorized on account", "username", bot.Self.UserName)
	return bot, nil
}

func NewAlerter(bot Sender, chatID int64, profiles ProfileLookup, loc *localization.Localizer) *Alerter {
	return &Alerter{
		Bot:       bot,
		ChatID:    chatID,
		Profiles:  profiles,
		Localizer: loc,
		queue:     make(chan models.Complaint, queueSize),
		log:       logging.Component("telegram"),
	}
}

// Publish queues an alert for emergency complaint inserts and ignores
// everything else. A full queue drops the alert.
func (a *Alerter) Publish(_ context.Context, ev models.ChangeEvent) {
	if ev.Table != models.TableComplaints || ev.Type != models.ChangeInsert {
		return
	}
	var c models.Complaint
	if err := ev.Decode(&c); err != nil || c.Status != models.StatusEmergency {
		return
	}
	select {
	case a.queue <- c:
	default:
		a.log.Warn("alert queue full, dropping emergency alert", "complaint_id", c.ID)
	}
}

// Run sends queued alerts until ctx is done.
func (a *Alerter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-a.queue:
			a.send(ctx, c)
		}
	}
}

func (a *Alerter) send(ctx context.Context, c models.Complaint) {
	var student *models.Profile
	if a.Profiles != nil {
		p, err := a.Profiles.GetProfileByID(ctx, c.StudentID)
		if err != nil {
			a.log.WarnContext(ctx, "failed to load complaint owner", "complaint_id", c.ID, "error", err)
		}
		student = p
	}

	msg := tgbotapi.NewMessage(a.ChatID, a.format(c, student))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := a.Bot.Send(msg); err != nil {
		a.log.ErrorContext(ctx, "failed to send emergency alert", "complaint_id", c.ID, "error", err)
		return
	}
	a.log.InfoContext(ctx, "emergency alert sent", "complaint_id", c.ID)
}

func (a *Alerter) format(c models.Complaint, student *models.Profile) string {
	category := string(c.Category)
	if a.Localizer != nil {
		category = a.Localizer.CategoryLabel(localization.DefaultLanguage, c.Category)
	}

	who := models.UnknownSender
	if student != nil {
		who = student.Name
		if student.StudentID != nil {
			who += " (" + *student.StudentID + ")"
		}
	}

	desc := c.Description
	if r := []rune(desc); len(r) > maxDescription {
		desc = string(r[:maxDescription]) + "…"
	}

	var b strings.Builder
	b.WriteString("🚨 <b>Emergency complaint</b>\n")
	fmt.Fprintf(&b, "<b>Category:</b> %s\n", html.EscapeString(category))
	fmt.Fprintf(&b, "<b>Student:</b> %s\n\n", html.EscapeString(who))
	b.WriteString(html.EscapeString(desc))
	return b.String()
}

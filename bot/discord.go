package bot

import (
	"context"
	"fmt"
	"strings"

	"escrowbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Discord is the social channel backed by a Discord bot session
type Discord struct {
	session *discordgo.Session
	mention string
	handler *Handler
}

// NewDiscord creates a Discord session. Commands addressed with a native
// Discord mention of the bot are rewritten to start with mention.
func NewDiscord(token, mention string) (*Discord, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return &Discord{session: dg, mention: mention}, nil
}

// Start registers the handler and opens the websocket connection
func (d *Discord) Start(handler *Handler) error {
	d.handler = handler
	d.session.AddHandler(d.onMessageCreate)

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Close closes the websocket connection
func (d *Discord) Close() error {
	return d.session.Close()
}

// Reply posts text as a reply to the originating message
func (d *Discord) Reply(ctx context.Context, post models.PostRef, text string) error {
	_, err := d.session.ChannelMessageSendReply(post.ChannelID, text, &discordgo.MessageReference{
		MessageID: post.ID,
		ChannelID: post.ChannelID,
	}, discordgo.WithContext(ctx))
	return err
}

// SendPrivate sends a direct message
func (d *Discord) SendPrivate(ctx context.Context, userID, text string) error {
	channel, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open direct message channel: %w", err)
	}
	if _, err := d.session.ChannelMessageSend(channel.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send direct message: %w", err)
	}
	return nil
}

// MentionUser renders a Discord user mention
func (d *Discord) MentionUser(userID string) string {
	return "<@" + userID + ">"
}

// onMessageCreate runs on its own goroutine per message
func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	botUserID := ""
	if s.State != nil && s.State.User != nil {
		botUserID = s.State.User.ID
	}

	event, ok := toSocialEvent(m.Message, botUserID, d.mention)
	if !ok {
		return
	}

	log.WithFields(log.Fields{
		"post_id":   event.Post.ID,
		"author_id": event.AuthorID,
	}).Debug("Received message")

	d.handler.Handle(context.Background(), event)
}

// toSocialEvent maps a Discord message onto the fields the handler reads.
// Messages from bots are dropped.
func toSocialEvent(m *discordgo.Message, botUserID, mention string) (models.SocialEvent, bool) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return models.SocialEvent{}, false
	}

	event := models.SocialEvent{
		Post: models.PostRef{
			ID:        m.ID,
			ChannelID: m.ChannelID,
		},
		AuthorID: m.Author.ID,
		Text:     normalizeMention(m.Content, botUserID, mention),
	}
	if m.ReferencedMessage != nil && m.ReferencedMessage.Author != nil {
		event.InReplyToAuthorID = replyTarget(m.ReferencedMessage, botUserID)
	}
	return event, true
}

// replyTarget returns the user a reply is aimed at. A reply to one of the
// bot's own posts targets the first other user that post mentions, which for
// a bet announcement is the bettor. Empty means no user could be resolved.
func replyTarget(ref *discordgo.Message, botUserID string) string {
	if botUserID == "" || ref.Author.ID != botUserID {
		return ref.Author.ID
	}
	for _, user := range ref.Mentions {
		if user != nil && user.ID != botUserID {
			return user.ID
		}
	}
	return ""
}

// normalizeMention replaces a leading native mention of the bot with the
// configured mention string
func normalizeMention(content, botUserID, mention string) string {
	content = strings.TrimRight(content, " \t\r\n")
	if botUserID == "" {
		return content
	}
	for _, native := range []string{"<@" + botUserID + ">", "<@!" + botUserID + ">"} {
		if content == native || strings.HasPrefix(content, native+" ") {
			return mention + strings.TrimPrefix(content, native)
		}
	}
	return content
}

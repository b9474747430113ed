package bot

import (
	"testing"

	"escrowbot/models"
	"escrowbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMention = "@deadprimatesbot"
	testGameID  = "0123456789abcdef0123456789abcdef"
)

func socialEvent(text, inReplyTo string) models.SocialEvent {
	return models.SocialEvent{
		Post:              models.PostRef{ID: "post-1", ChannelID: "channel-1"},
		AuthorID:          "alice",
		Text:              text,
		InReplyToAuthorID: inReplyTo,
	}
}

func TestParser_Valid(t *testing.T) {
	p := NewParser(testMention)

	tests := []struct {
		name      string
		text      string
		inReplyTo string
		want      Command
	}{
		{
			name: "initialize",
			text: "@deadprimatesbot INITIALIZE",
			want: Command{Verb: VerbInitialize, AuthorID: "alice"},
		},
		{
			name: "bet",
			text: "@deadprimatesbot BET 50",
			want: Command{Verb: VerbBet, AuthorID: "alice", Amount: 50},
		},
		{
			name:      "accept",
			text:      "@deadprimatesbot ACCEPT " + testGameID,
			inReplyTo: "bob",
			want:      Command{Verb: VerbAccept, AuthorID: "alice", InReplyToID: "bob", GameIdentifier: testGameID},
		},
		{
			name: "cancel",
			text: "@deadprimatesbot CANCEL " + testGameID,
			want: Command{Verb: VerbCancel, AuthorID: "alice", GameIdentifier: testGameID},
		},
		{
			name: "trailing whitespace",
			text: "@deadprimatesbot BET 7 \n",
			want: Command{Verb: VerbBet, AuthorID: "alice", Amount: 7},
		},
		{
			name: "largest stake",
			text: "@deadprimatesbot BET 9223372036854775807",
			want: Command{Verb: VerbBet, AuthorID: "alice", Amount: service.MaxStake},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := p.Parse(socialEvent(tt.text, tt.inReplyTo))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *cmd)
		})
	}
}

func TestParser_Rejects(t *testing.T) {
	p := NewParser(testMention)

	tests := []struct {
		name      string
		text      string
		inReplyTo string
		wantErr   error
	}{
		{"negative amount", "@deadprimatesbot BET -5", "", service.ErrInvalidAmount},
		{"zero amount", "@deadprimatesbot BET 0", "", service.ErrInvalidAmount},
		{"non-numeric amount", "@deadprimatesbot BET fifty", "", service.ErrInvalidAmount},
		{"fractional amount", "@deadprimatesbot BET 1.5", "", service.ErrInvalidAmount},
		{"overflowing amount", "@deadprimatesbot BET 99999999999999999999", "", service.ErrInvalidAmount},
		{"amount beyond largest stake", "@deadprimatesbot BET 9223372036854775808", "", service.ErrInvalidAmount},
		{"bet without amount", "@deadprimatesbot BET", "", service.ErrInvalidCommand},
		{"bet with extra token", "@deadprimatesbot BET 5 now", "", service.ErrInvalidCommand},
		{"double space", "@deadprimatesbot  BET 5", "", service.ErrInvalidCommand},
		{"accept without reply", "@deadprimatesbot ACCEPT abc123", "", service.ErrInvalidCommand},
		{"accept malformed identifier", "@deadprimatesbot ACCEPT abc123", "bob", service.ErrInvalidCommand},
		{"accept uppercase identifier", "@deadprimatesbot ACCEPT 0123456789ABCDEF0123456789ABCDEF", "bob", service.ErrInvalidCommand},
		{"initialize with extra token", "@deadprimatesbot INITIALIZE now", "", service.ErrInvalidCommand},
		{"lowercase verb", "@deadprimatesbot bet 5", "", service.ErrInvalidCommand},
		{"unknown verb", "@deadprimatesbot WITHDRAW 5", "", service.ErrInvalidCommand},
		{"mention only", "@deadprimatesbot", "", service.ErrInvalidCommand},
		{"not addressed", "hello world", "", service.ErrInvalidCommand},
		{"other mention", "@someotherbot BET 5", "", ErrNotAddressed},
		{"leading whitespace", "  @deadprimatesbot BET 5", "", ErrNotAddressed},
		{"empty", "", "", ErrNotAddressed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := p.Parse(socialEvent(tt.text, tt.inReplyTo))
			assert.Nil(t, cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParser_RequiresAuthor(t *testing.T) {
	event := socialEvent("@deadprimatesbot INITIALIZE", "")
	event.AuthorID = ""

	_, err := NewParser(testMention).Parse(event)
	assert.ErrorIs(t, err, service.ErrInvalidCommand)
}

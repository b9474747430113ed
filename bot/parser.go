package bot

import (
	"fmt"
	"strconv"
	"strings"

	"escrowbot/chain"
	"escrowbot/models"
	"escrowbot/service"
)

// Verb is the keyword in position 1 of a command
type Verb string

const (
	VerbInitialize Verb = "INITIALIZE"
	VerbBet        Verb = "BET"
	VerbAccept     Verb = "ACCEPT"
	VerbCancel     Verb = "CANCEL"
)

// ErrNotAddressed marks text that does not start with the bot mention.
// Such posts are ignored without a reply.
var ErrNotAddressed = fmt.Errorf("%w: not addressed to the bot", service.ErrInvalidCommand)

// Command is a fully validated instruction
type Command struct {
	Verb           Verb
	AuthorID       string
	InReplyToID    string
	Amount         uint64
	GameIdentifier string
}

// Parser validates instructions addressed to the bot
type Parser struct {
	mention string
}

// NewParser creates a parser that only accepts commands starting with mention
func NewParser(mention string) *Parser {
	return &Parser{mention: mention}
}

// Parse tokenizes the event text on single spaces and validates the whole
// grammar for the verb. Trailing whitespace is dropped; the mention must be
// the very first token. It has no side effects.
func (p *Parser) Parse(event models.SocialEvent) (*Command, error) {
	tokens := strings.Split(strings.TrimRight(event.Text, " \t\r\n"), " ")
	if tokens[0] != p.mention {
		return nil, ErrNotAddressed
	}
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: missing verb", service.ErrInvalidCommand)
	}
	if event.AuthorID == "" {
		return nil, fmt.Errorf("%w: missing author", service.ErrInvalidCommand)
	}

	cmd := &Command{
		Verb:        Verb(tokens[1]),
		AuthorID:    event.AuthorID,
		InReplyToID: event.InReplyToAuthorID,
	}

	switch cmd.Verb {
	case VerbInitialize:
		if len(tokens) != 2 {
			return nil, arityError(cmd.Verb, 2)
		}

	case VerbBet:
		if len(tokens) != 3 {
			return nil, arityError(cmd.Verb, 3)
		}
		amount, err := strconv.ParseUint(tokens[2], 10, 64)
		if err != nil || amount == 0 {
			return nil, fmt.Errorf("%w: %q is not a positive integer", service.ErrInvalidAmount, tokens[2])
		}
		if amount > service.MaxStake {
			return nil, fmt.Errorf("%w: %q is too large", service.ErrInvalidAmount, tokens[2])
		}
		cmd.Amount = amount

	case VerbAccept:
		if len(tokens) != 3 {
			return nil, arityError(cmd.Verb, 3)
		}
		if !event.IsReply() {
			return nil, fmt.Errorf("%w: ACCEPT must reply to the bet", service.ErrInvalidCommand)
		}
		if !chain.ValidGameIdentifier(tokens[2]) {
			return nil, fmt.Errorf("%w: malformed game identifier", service.ErrInvalidCommand)
		}
		cmd.GameIdentifier = tokens[2]

	case VerbCancel:
		if len(tokens) != 3 {
			return nil, arityError(cmd.Verb, 3)
		}
		if !chain.ValidGameIdentifier(tokens[2]) {
			return nil, fmt.Errorf("%w: malformed game identifier", service.ErrInvalidCommand)
		}
		cmd.GameIdentifier = tokens[2]

	default:
		return nil, fmt.Errorf("%w: unknown verb %q", service.ErrInvalidCommand, tokens[1])
	}

	return cmd, nil
}

func arityError(verb Verb, want int) error {
	return fmt.Errorf("%w: %s takes exactly %d tokens", service.ErrInvalidCommand, verb, want)
}

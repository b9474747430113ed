package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"escrowbot/models"
	"escrowbot/service"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
)

const commandTimeout = 2 * time.Minute

// Replier posts text back to the social channel
type Replier interface {
	// Reply attaches a public reply to a post
	Reply(ctx context.Context, post models.PostRef, text string) error

	// SendPrivate delivers text over a channel only the user can read
	SendPrivate(ctx context.Context, userID, text string) error

	// MentionUser renders a user reference for reply text
	MentionUser(userID string) string
}

// Deduper reports whether a post is seen for the first time
type Deduper interface {
	FirstSeen(ctx context.Context, postID string) (bool, error)
}

// ExplorerLinker renders a transaction link
type ExplorerLinker interface {
	ExplorerURL(sig solana.Signature) string
}

// CommandRecorder observes handled commands
type CommandRecorder interface {
	RecordCommand(ctx context.Context, verb string, err error)
	RecordDuplicateEvent(ctx context.Context)
}

// HandlerDeps are the collaborators of a Handler. Recorder may be nil.
type HandlerDeps struct {
	Mention  string
	Accounts service.AccountService
	Bets     service.BetOrchestrator
	Replier  Replier
	Deduper  Deduper
	Links    ExplorerLinker
	Recorder CommandRecorder
}

// Handler turns social events into orchestrator calls and replies
type Handler struct {
	parser  *Parser
	mention string
	deps    HandlerDeps
}

// NewHandler creates a command handler
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		parser:  NewParser(deps.Mention),
		mention: deps.Mention,
		deps:    deps,
	}
}

// Handle processes one social event. Every event is independent; callers may
// invoke Handle concurrently.
func (h *Handler) Handle(ctx context.Context, event models.SocialEvent) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd, err := h.parser.Parse(event)
	if errors.Is(err, ErrNotAddressed) {
		return
	}

	first, dedupeErr := h.deps.Deduper.FirstSeen(ctx, event.Post.ID)
	if dedupeErr != nil {
		log.WithFields(log.Fields{
			"post_id": event.Post.ID,
			"error":   dedupeErr,
		}).Error("Failed to check for duplicate event, dropping it")
		return
	}
	if !first {
		log.WithField("post_id", event.Post.ID).Debug("Ignoring duplicate event")
		if h.deps.Recorder != nil {
			h.deps.Recorder.RecordDuplicateEvent(ctx)
		}
		return
	}

	if err != nil {
		h.record(ctx, "", err)
		h.reply(ctx, event.Post, h.errorMessage(err))
		return
	}

	logger := log.WithFields(log.Fields{
		"post_id":   event.Post.ID,
		"author_id": cmd.AuthorID,
		"verb":      cmd.Verb,
	})
	logger.Info("Handling command")

	var text string
	switch cmd.Verb {
	case VerbInitialize:
		text, err = h.initialize(ctx, cmd)
	case VerbBet:
		text, err = h.bet(ctx, cmd)
	case VerbAccept:
		text, err = h.accept(ctx, cmd)
	case VerbCancel:
		text, err = h.cancel(ctx, cmd)
	}

	h.record(ctx, cmd.Verb, err)
	if err != nil {
		logger.WithError(err).Warn("Command failed")
		if text == "" {
			text = h.errorMessage(err)
		}
	}
	h.reply(ctx, event.Post, text)
}

func (h *Handler) initialize(ctx context.Context, cmd *Command) (string, error) {
	account, err := h.deps.Accounts.CreateAccount(ctx, cmd.AuthorID)
	if err != nil {
		return "", err
	}

	private := fmt.Sprintf("Your new wallet recovery phrase. Keep it secret, it is shown only once:\n%s", account.Mnemonic)
	if err := h.deps.Replier.SendPrivate(ctx, cmd.AuthorID, private); err != nil {
		log.WithFields(log.Fields{
			"author_id": cmd.AuthorID,
			"error":     err,
		}).Error("Failed to deliver recovery phrase")
		return fmt.Sprintf("Wallet created with public key `%s`, but I could not send you the recovery phrase. Enable direct messages and run `%s INITIALIZE` again.",
			account.PublicKey, h.mention), nil
	}

	return fmt.Sprintf("Wallet created. Public key: `%s`. Your recovery phrase was sent by direct message.", account.PublicKey), nil
}

func (h *Handler) bet(ctx context.Context, cmd *Command) (string, error) {
	opened, err := h.deps.Bets.Open(ctx, cmd.AuthorID, cmd.Amount)
	if err != nil {
		return "", err
	}

	// The announcement mentions the bettor so a reply to it resolves to them
	return fmt.Sprintf("%s opened a bet of %d. Game: `%s`\nReply `%s ACCEPT %s` to take it.\n%s",
		h.deps.Replier.MentionUser(cmd.AuthorID), cmd.Amount, opened.GameIdentifier,
		h.mention, opened.GameIdentifier, h.deps.Links.ExplorerURL(opened.TxRef)), nil
}

func (h *Handler) accept(ctx context.Context, cmd *Command) (string, error) {
	result, err := h.deps.Bets.Accept(ctx, cmd.AuthorID, cmd.InReplyToID, cmd.GameIdentifier)
	if err != nil {
		if result != nil {
			return fmt.Sprintf("Joined bet `%s` (%s) but settlement failed. The stakes stay in escrow until it is settled.",
				cmd.GameIdentifier, h.deps.Links.ExplorerURL(result.JoinTxRef)), err
		}
		return "", err
	}

	settlement := result.Settlement
	var b strings.Builder
	fmt.Fprintf(&b, "Bet `%s` settled. %s wins the pot!\n", cmd.GameIdentifier, h.deps.Replier.MentionUser(settlement.WinnerID))
	fmt.Fprintf(&b, "Deposit: %s\n", h.deps.Links.ExplorerURL(result.JoinTxRef))
	fmt.Fprintf(&b, "Payout: %s", h.deps.Links.ExplorerURL(settlement.TxRef))
	return b.String(), nil
}

func (h *Handler) cancel(ctx context.Context, cmd *Command) (string, error) {
	sig, err := h.deps.Bets.Cancel(ctx, cmd.AuthorID, cmd.GameIdentifier)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Bet `%s` cancelled and refunded.\n%s", cmd.GameIdentifier, h.deps.Links.ExplorerURL(sig)), nil
}

func (h *Handler) errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return "The amount must be a positive whole number."
	case errors.Is(err, service.ErrNotLoggedIn):
		return fmt.Sprintf("You have no wallet session. Send `%s INITIALIZE` first.", h.mention)
	case errors.Is(err, service.ErrUnknownIdentity):
		return "I could not find a wallet for one of the bettors."
	case errors.Is(err, service.ErrTransactionFailed):
		return "The transaction was rejected. Check your balance and the game identifier."
	case errors.Is(err, service.ErrNotBetInitializer):
		return "Reply to the bet announcement or to the post of the player who opened the bet."
	case errors.Is(err, service.ErrInvalidCommand):
		return fmt.Sprintf("Unrecognized command. Try `%s INITIALIZE`, `%s BET <amount>`, or reply to a bet with `%s ACCEPT <game>`.",
			h.mention, h.mention, h.mention)
	default:
		return "Something went wrong. Please try again."
	}
}

func (h *Handler) record(ctx context.Context, verb Verb, err error) {
	if h.deps.Recorder == nil {
		return
	}
	name := strings.ToLower(string(verb))
	if name == "" {
		name = "invalid"
	}
	h.deps.Recorder.RecordCommand(ctx, name, err)
}

func (h *Handler) reply(ctx context.Context, post models.PostRef, text string) {
	if err := h.deps.Replier.Reply(ctx, post, text); err != nil {
		log.WithFields(log.Fields{
			"post_id": post.ID,
			"error":   err,
		}).Error("Failed to send reply")
	}
}

package models

// PostRef addresses a post so a reply can be attached to it
type PostRef struct {
	ID        string
	ChannelID string
}

// SocialEvent is an inbound instruction posted on the social channel
type SocialEvent struct {
	Post              PostRef
	AuthorID          string
	Text              string
	InReplyToAuthorID string // empty when the post is not a reply
}

// IsReply reports whether the post replies to another author's post
func (e SocialEvent) IsReply() bool {
	return e.InReplyToAuthorID != ""
}

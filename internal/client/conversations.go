package client

import (
	"context"
	"strings"

	"slack-pdf-uploader/internal/logging"

	"github.com/slack-go/slack"
)

// JoinChannel adds the bot to a public channel. Being a member already is
// not an error.
func (c *SlackClient) JoinChannel(ctx context.Context, channel string) error {
	_, warning, _, err := c.api.JoinConversationContext(ctx, channel)
	if err != nil {
		wrapped := wrapSlackError(MethodJoin, err)
		if ErrorCode(wrapped) == CodeAlreadyInChannel {
			return nil
		}
		return wrapped
	}
	c.logger.Debug("channel joined",
		logging.Field("channel", channel),
		logging.Field("warning", warning),
	)
	return nil
}

// FilePermalink looks up the permalink of an uploaded file.
func (c *SlackClient) FilePermalink(ctx context.Context, fileID string) (string, error) {
	file, _, _, err := c.api.GetFileInfoContext(ctx, fileID, 0, 0)
	if err != nil {
		return "", wrapSlackError(MethodFileInfo, err)
	}
	if file == nil || strings.TrimSpace(file.Permalink) == "" {
		return "", &APIError{Method: MethodFileInfo, Code: CodePermalinkMissing}
	}
	return strings.TrimSpace(file.Permalink), nil
}

// PostMessage posts text to channel and returns the message timestamp. Link
// unfurling is disabled so pasted URLs stay compact; media unfurling keeps
// the platform default and the file preview still renders.
func (c *SlackClient) PostMessage(ctx context.Context, channel, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return "", wrapSlackError(MethodPostMessage, err)
	}
	return ts, nil
}

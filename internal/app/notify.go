package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slack-pdf-uploader/internal/client"
	"slack-pdf-uploader/internal/logging"
)

var errNoFileID = errors.New("upload response carried no file id")

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// resolveLink uses the permalink from the upload response when there is one
// and only otherwise looks it up.
func (u *Uploader) resolveLink(ctx context.Context, file client.File) (string, *LinkResolutionError) {
	if file.Permalink != "" {
		return file.Permalink, nil
	}
	if file.ID == "" {
		return "", &LinkResolutionError{Err: errNoFileID}
	}
	link, err := u.api.FilePermalink(ctx, file.ID)
	if err != nil {
		return "", &LinkResolutionError{FileID: file.ID, Err: err}
	}
	u.logger.Debug("permalink resolved", logging.Field("file_id", file.ID))
	return link, nil
}

func (u *Uploader) notify(ctx context.Context, channel, fileID, text, permalink string) (string, error) {
	ts, err := u.api.PostMessage(ctx, channel, renderMessage(text, permalink))
	if err != nil {
		return "", newNotifyError(fileID, err)
	}
	u.logger.Info("link message posted",
		logging.Field("channel", channel),
		logging.Field("ts", ts),
	)
	return ts, nil
}

func renderMessage(text, permalink string) string {
	label := mrkdwnEscaper.Replace(text)
	if permalink == "" {
		return fmt.Sprintf("%s uploaded successfully (no link available).", label)
	}
	return fmt.Sprintf("<%s|%s> uploaded successfully!", permalink, label)
}

func linkText(req Request, pdf pdfFile) string {
	if text := strings.TrimSpace(req.LinkText); text != "" {
		return text
	}
	return pdf.Name
}

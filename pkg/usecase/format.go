package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/slack-go/slack"
)

// formatMessage builds the webhook payload for an enriched recording. It is
// pure data construction; no network calls happen here.
func (uc *SyncUseCase) formatMessage(rec *model.Recording) (*slack.WebhookMessage, error) {
	if rec.Author == nil || rec.Subject == nil {
		return nil, goerr.New("recording is not enriched", goerr.V("recordingID", rec.ID))
	}

	body, err := parseBody(rec)
	if err != nil {
		return nil, err
	}

	recordingLink := fmt.Sprintf("%s/%s/%d", uc.baseURL, rec.Type.Collection(), rec.ID)
	subjectLink := fmt.Sprintf("%s/%s/%d", uc.baseURL, rec.SubjectType.Collection(), rec.Subject.ID)

	text, truncated := truncate(body, uc.notifyCfg.MaxChars, uc.notifyCfg.MaxLines)
	if truncated {
		text += fmt.Sprintf("\n<%s|Read more…>", recordingLink)
	}

	attachment := slack.Attachment{
		Fallback:   body,
		Text:       text,
		Ts:         json.Number(strconv.FormatInt(rec.CreatedAt.Unix(), 10)),
		MarkdownIn: []string{"text", "pretext"},
	}
	if rec.Title != "" {
		attachment.Title = rec.Title
		attachment.TitleLink = recordingLink
	}

	return &slack.WebhookMessage{
		Text: fmt.Sprintf("%s shared <%s|%s> about <%s|%s>",
			rec.Author.FirstName(), recordingLink, rec.Type.Label(), subjectLink, rec.SubjectName),
		Username:    uc.notifyCfg.Username,
		IconURL:     uc.notifyCfg.IconURL,
		Attachments: []slack.Attachment{attachment},
	}, nil
}

// truncate applies the configured line and character caps. A zero cap
// disables that limit; with both disabled the text passes through unchanged.
func truncate(s string, maxChars, maxLines int) (string, bool) {
	truncated := false

	if maxLines > 0 {
		lines := strings.Split(s, "\n")
		if len(lines) > maxLines {
			s = strings.Join(lines[:maxLines], "\n")
			truncated = true
		}
	}

	if maxChars > 0 {
		runes := []rune(s)
		if len(runes) > maxChars {
			s = string(runes[:maxChars])
			truncated = true
		}
	}

	return s, truncated
}

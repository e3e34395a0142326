package usecase

import (
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/m-mizutani/goerr/v2"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/domain/types"
)

// ErrTagParse marks errors raised while parsing a recording body
var ErrTagParse = goerr.NewTag("body_parse")

// mimeHeader wraps a bare recording body so it parses as a standalone MIME
// message. Email bodies arrive MIME-encoded but without a top-level header.
const mimeHeader = "Content-Type: text/plain; charset=UTF-8\r\n\r\n"

// parseBody extracts displayable plain text from a recording body. Notes are
// returned verbatim; everything else is treated as a MIME message body. Empty
// content is never an error: an empty extraction falls back to the raw body,
// and an empty raw body yields empty text.
func parseBody(rec *model.Recording) (string, error) {
	if rec.Type == types.RecordingTypeNote {
		return rec.Body, nil
	}

	env, err := enmime.ReadEnvelope(strings.NewReader(mimeHeader + rec.Body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse recording body",
			goerr.T(ErrTagParse), goerr.V("recordingID", rec.ID))
	}

	if env.Text != "" {
		return env.Text, nil
	}
	return rec.Body, nil
}

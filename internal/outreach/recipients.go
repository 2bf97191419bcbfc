// Package outreach sends plain-text emails to a CSV list of recipients over
// SMTP, retrying each delivery and pacing sends with a rate limiter.
package outreach

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/model"
)

// recipientColumns are the required header columns of a mailing list.
var recipientColumns = []string{"email", "subject", "body"}

// ReadRecipients loads a mailing list CSV from path.
func ReadRecipients(path string) ([]model.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "outreach: open recipients")
	}
	defer f.Close() //nolint:errcheck

	return DecodeRecipients(f)
}

// DecodeRecipients parses a mailing list with header columns email, subject
// and body. Header names are case-insensitive and extra columns are ignored.
// Rows without an email address are skipped.
func DecodeRecipients(r io.Reader) ([]model.Recipient, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "outreach: read header")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range recipientColumns {
		if _, ok := index[name]; !ok {
			return nil, eris.Errorf("outreach: missing required column %q", name)
		}
	}

	var out []model.Recipient
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, eris.Wrapf(err, "outreach: read row %d", line)
		}

		get := func(col string) string {
			i := index[col]
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		email := strings.TrimSpace(get("email"))
		if email == "" {
			zap.L().Warn("outreach: skipping row without email", zap.Int("line", line))
			continue
		}
		out = append(out, model.Recipient{
			Email:   email,
			Subject: get("subject"),
			Body:    get("body"),
		})
	}
}

package outreach

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planner-contacts/internal/model"
)

// BuildMessage renders an RFC 5322 plain-text message for r.
func BuildMessage(from string, r model.Recipient, date time.Time) ([]byte, error) {
	if strings.ContainsAny(r.Email, "\r\n") || strings.ContainsAny(from, "\r\n") {
		return nil, eris.Errorf("outreach: invalid address in header for %q", r.Email)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", r.Email)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", r.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	body := strings.ReplaceAll(r.Body, "\r\n", "\n")
	if _, err := qp.Write([]byte(strings.ReplaceAll(body, "\n", "\r\n"))); err != nil {
		return nil, eris.Wrap(err, "outreach: encode body")
	}
	if err := qp.Close(); err != nil {
		return nil, eris.Wrap(err, "outreach: encode body")
	}
	buf.WriteString("\r\n")

	return buf.Bytes(), nil
}

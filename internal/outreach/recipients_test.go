package outreach

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/planner-contacts/internal/model"
)

func TestDecodeRecipients(t *testing.T) {
	in := "email,subject,body\n" +
		"a@acme.com,Hello,\"Hi there,\nwelcome\"\n" +
		"b@bloom.com,Hi,Short\n"

	got, err := DecodeRecipients(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []model.Recipient{
		{Email: "a@acme.com", Subject: "Hello", Body: "Hi there,\nwelcome"},
		{Email: "b@bloom.com", Subject: "Hi", Body: "Short"},
	}, got)
}

func TestDecodeRecipients_HeaderCaseAndExtraColumns(t *testing.T) {
	in := "\ufeffName,Body,EMAIL,Subject\nAcme,Text, a@acme.com ,Sub\n"

	got, err := DecodeRecipients(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a@acme.com", got[0].Email)
	assert.Equal(t, "Text", got[0].Body)
	assert.Equal(t, "Sub", got[0].Subject)
}

func TestDecodeRecipients_SkipsBlankEmail(t *testing.T) {
	in := "email,subject,body\n,s,b\nc@c.com,s,b\n"

	got, err := DecodeRecipients(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c@c.com", got[0].Email)
}

func TestDecodeRecipients_MissingColumn(t *testing.T) {
	_, err := DecodeRecipients(strings.NewReader("email,subject\na@a.com,hi\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "body"`)
}

func TestDecodeRecipients_Empty(t *testing.T) {
	_, err := DecodeRecipients(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadRecipients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.csv")
	require.NoError(t, os.WriteFile(path, []byte("email,subject,body\nx@y.com,s,b\n"), 0o644))

	got, err := ReadRecipients(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = ReadRecipients(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

package email

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterLatestTargetEmail(t *testing.T) {
	emails := []*Email{
		{UID: 1, Subject: "Police Stop Data extract", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{UID: 2, Subject: "Unrelated newsletter", Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)},
		{UID: 3, Subject: "Police Stop Data extract (monthly)", Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	latest := filterLatestTargetEmail(emails, "Police Stop Data")
	require.NotNil(t, latest)
	assert.Equal(t, uint32(3), latest.UID)
}

func TestFilterLatestTargetEmailNoMatch(t *testing.T) {
	emails := []*Email{
		{UID: 1, Subject: "Unrelated"},
	}
	assert.Nil(t, filterLatestTargetEmail(emails, "Police Stop Data"))
	assert.Nil(t, filterLatestTargetEmail(nil, "Police Stop Data"))
}

func TestDecodeHeaderPassthrough(t *testing.T) {
	assert.Equal(t, "Police Stop Data", decodeHeader("Police Stop Data"))
}

func TestDecodeHeaderEncodedWord(t *testing.T) {
	// "caf=E9" is latin-1 for café
	assert.Equal(t, "café extract", decodeHeader("=?iso-8859-1?Q?caf=E9_extract?="))
}

func TestExtractAttachmentHandler(t *testing.T) {
	dir := t.TempDir()
	handler := NewExtractAttachmentHandler("Police Stop Data", dir)

	e := &Email{
		UID:     42,
		Subject: "Police Stop Data extract",
		Attachments: []*Attachment{
			{Filename: "readme.txt", Content: []byte("ignore me")},
			{Filename: "stops_2023.csv", Content: []byte("OBJECTID,gender\n1,Male\n")},
		},
	}

	path, err := handler.Handle(e)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stops_2023.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "OBJECTID")

	// the same UID is not processed twice
	path, err = handler.Handle(e)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestExtractAttachmentHandlerSubjectMismatch(t *testing.T) {
	handler := NewExtractAttachmentHandler("Police Stop Data", t.TempDir())

	path, err := handler.Handle(&Email{
		UID:         1,
		Subject:     "Lunch menu",
		Attachments: []*Attachment{{Filename: "stops.csv", Content: []byte("x")}},
	})
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestExtractAttachmentHandlerNoUsableAttachment(t *testing.T) {
	handler := NewExtractAttachmentHandler("Police Stop Data", t.TempDir())

	path, err := handler.Handle(&Email{
		UID:         1,
		Subject:     "Police Stop Data extract",
		Attachments: []*Attachment{{Filename: "notes.pdf", Content: []byte("x")}},
	})
	require.NoError(t, err)
	assert.Empty(t, path)
}

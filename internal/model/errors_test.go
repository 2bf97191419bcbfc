package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("wait for cards: context deadline exceeded")
	err := fmt.Errorf("walk: %w", &DirectoryError{Page: 41, URL: "https://x/?page=41", Err: cause})

	var de *DirectoryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 41, de.Page)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "directory page 41")
}

func TestRecoverableErrors_Messages(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	pe := &ProfileError{ProfileURL: "https://p", Err: cause}
	assert.Equal(t, "profile https://p: boom", pe.Error())
	assert.ErrorIs(t, pe, cause)

	ce := &ContactError{URL: "https://a.com/contact", Err: cause}
	assert.Equal(t, "contact page https://a.com/contact: boom", ce.Error())
	assert.ErrorIs(t, ce, cause)

	cl := &CleanupError{Owner: "Acme", Err: cause}
	assert.Equal(t, "close context for Acme: boom", cl.Error())
	assert.ErrorIs(t, cl, cause)
}

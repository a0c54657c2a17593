package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := New(VideoUnavailable, "lookup", "https://www.youtube.com/watch?v=abcdefghijk", errors.New("private video"))
	wrapped := errors.Wrap(base, "register")

	assert.Equal(t, VideoUnavailable, KindOf(base))
	assert.Equal(t, VideoUnavailable, KindOf(wrapped))
	assert.True(t, Is(wrapped, VideoUnavailable))
	assert.False(t, Is(nil, VideoUnavailable))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{InvalidInput, http.StatusBadRequest},
		{InvalidURL, http.StatusBadRequest},
		{DuplicateURL, http.StatusBadRequest},
		{VideoUnavailable, http.StatusNotFound},
		{NotFound, http.StatusNotFound},
		{ProviderError, http.StatusInternalServerError},
		{Unknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New(NotFound, "remove", "42", nil)
	assert.Equal(t, "remove 42: not_found", err.Error())

	err = New(ProviderError, "fetch transcript", "abcdefghijk", errors.New("status 503"))
	assert.Equal(t, "fetch transcript abcdefghijk: status 503", err.Error())
	assert.Equal(t, "Error with video provider: status 503", Message(err))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Please Provide the URL", Message(New(InvalidInput, "add url", "", errors.New("Please Provide the URL"))))
	assert.Equal(t, "URL already exists", Message(New(DuplicateURL, "register", "u", nil)))
	assert.Equal(t, "Invalid YouTube URL", Message(New(InvalidURL, "register", "u", nil)))
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := InvalidInput(base, "bad year")

	assert.Equal(t, "bad year: boom", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.True(t, errors.Is(err, base))
	assert.Nil(t, Wrap(nil, CodeInternalError, "x", 500))
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrDataLoading)
	assert.Same(t, ErrDataLoading, From(wrapped))

	internal := From(errors.New("disk"))
	assert.Equal(t, CodeInternalError, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
}

func TestFromUsesInternalDefaults(t *testing.T) {
	err := From(errors.New("disk"))
	assert.Equal(t, ErrInternal.Message, err.Message)
	assert.NotSame(t, ErrInternal, err)
}

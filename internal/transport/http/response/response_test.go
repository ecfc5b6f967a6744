package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"neontask/internal/domain"
)

func TestStatusOf(t *testing.T) {
	tests := map[domain.Kind]int{
		domain.KindValidation:         http.StatusBadRequest,
		domain.KindConflict:           http.StatusBadRequest,
		domain.KindInvalidCredentials: http.StatusUnauthorized,
		domain.KindUnauthorized:       http.StatusUnauthorized,
		domain.KindNotFound:           http.StatusNotFound,
		domain.KindInternal:           http.StatusInternalServerError,
	}
	for k, want := range tests {
		assert.Equal(t, want, StatusOf(k), k.String())
	}
}

func TestErrorDefaultsMessage(t *testing.T) {
	assert.Equal(t, ErrorBody{Error: MsgInternal}, Error(""))
	assert.Equal(t, ErrorBody{Error: "X"}, Error("X"))
}

package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chefgenie/internal/model"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrAccountNotFound, http.StatusNotFound, CodeAccountNotFound},
		{model.ErrAccountBanned, http.StatusForbidden, CodeAccountBanned},
		{model.ErrIncorrectPassword, http.StatusUnauthorized, CodeInvalidCredentials},
		{model.ErrUsernameExists, http.StatusConflict, CodeUsernameExists},
		{model.ErrBusy, http.StatusConflict, CodeBusy},
		{model.ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition},
		{model.ErrUndoUnavailable, http.StatusBadRequest, CodeUndoUnavailable},
		{model.ErrEmptyAnswer, http.StatusBadRequest, CodeEmptyAnswer},
		{fmt.Errorf("wrapped: %w", model.ErrUnknownTrack), http.StatusBadRequest, CodeUnknownTrack},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestMessageUsesPlayerFacingText(t *testing.T) {
	assert.Equal(t, "This account has been BANNED by the Owner.", Message(model.ErrAccountBanned))
	assert.Equal(t, "Cannot delete the Owner account.", Message(model.ErrCannotDeleteOwner))
	assert.Equal(t, http.StatusConflict, Status(model.ErrBusy))
}

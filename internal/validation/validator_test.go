package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tickstack/tickstack-server/internal/errors"
	"github.com/tickstack/tickstack-server/internal/validation"
)

type saveChecklistRequest struct {
	ListID       string `json:"list_id" validate:"required"`
	Title        string `json:"title" validate:"required,max=200"`
	TotalItems   int    `json:"total_items" validate:"gte=0"`
	PendingCount int    `json:"pending_count" validate:"gte=0,ltefield=TotalItems"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := saveChecklistRequest{
		ListID: "u1-1",
		Title:  "Groceries",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       saveChecklistRequest
		wantField string
	}{
		{
			name: "missing required field",
			req: saveChecklistRequest{
				ListID: "u1-1",
				Title:  "", // Missing
			},
			wantField: "title",
		},
		{
			name: "title too long",
			req: saveChecklistRequest{
				ListID: "u1-1",
				Title:  string(make([]byte, 201)),
			},
			wantField: "title",
		},
		{
			name: "missing id",
			req: saveChecklistRequest{
				Title: "Groceries",
			},
			wantField: "list_id",
		},
		{
			name: "pending count exceeds total",
			req: saveChecklistRequest{
				ListID:       "u1-1",
				Title:        "Groceries",
				TotalItems:   2,
				PendingCount: 3,
			},
			wantField: "pending_count",
		},
		{
			name: "negative counter",
			req: saveChecklistRequest{
				ListID:     "u1-1",
				Title:      "Groceries",
				TotalItems: -1,
			},
			wantField: "total_items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())

			fields, ok := appErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := saveChecklistRequest{
		Title: "Groceries",
	}

	err := v.Validate(req)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)

	// Should use JSON tag name "list_id", not struct field name "ListID".
	fields, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "list_id")
	assert.NotContains(t, fields, "ListID")
}

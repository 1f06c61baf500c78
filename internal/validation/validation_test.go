package validation_test

import (
	"strings"
	"testing"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Category    string `json:"category" validate:"required,complaint_category"`
	Description string `json:"description" validate:"min=10,max=1000"`
	Status      string `json:"status,omitempty" validate:"omitempty,complaint_status"`
}

func TestStruct_FieldMessages(t *testing.T) {
	v := validation.New()

	err := v.Struct(form{Description: "short"})
	require.Error(t, err)

	appErr := apperr.As(err)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Equal(t, "Category is required", appErr.Fields["category"])
	assert.Equal(t, "Description must be at least 10 characters", appErr.Fields["description"])
}

func TestStruct_DomainTags(t *testing.T) {
	v := validation.New()

	err := v.Struct(form{Category: "plumbing", Description: strings.Repeat("a", 10), Status: "closed"})
	require.Error(t, err)

	fields := apperr.As(err).Fields
	assert.Equal(t, "Invalid category", fields["category"])
	assert.Equal(t, "Invalid status", fields["status"])
}

func TestStruct_RuneLength(t *testing.T) {
	v := validation.New()

	// ten multi-byte runes are ten characters
	assert.NoError(t, v.Struct(form{Category: "hostel", Description: strings.Repeat("é", 10)}))
	assert.Error(t, v.Struct(form{Category: "hostel", Description: strings.Repeat("é", 1001)}))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Student ID", validation.Label("student_id"))
	assert.Equal(t, "Description", validation.Label("description"))
}

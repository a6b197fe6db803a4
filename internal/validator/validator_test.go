package validator

import (
	"testing"

	"filemanager/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsesJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(&dto.CreateFolderRequest{})
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "This field is required"}, verr.Errors)
}

func TestVisibilityRule(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.UploadMetaRequest{}))
	assert.NoError(t, v.Validate(&dto.UploadMetaRequest{Visibility: "public"}))

	err := v.Validate(&dto.UploadMetaRequest{Visibility: "secret"})
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.Equal(t, "Must be one of: public, private", verr.Errors["visibility"])
}

func TestEntityIDRequiredWithType(t *testing.T) {
	v := New()

	err := v.Validate(&dto.UploadMetaRequest{EntityType: "task"})
	require.Error(t, err)
	verr := err.(*ValidationError)
	assert.Contains(t, verr.Errors, "entity_id")

	assert.NoError(t, v.Validate(&dto.UploadMetaRequest{EntityType: "task", EntityID: "9"}))
}

func TestNestedTagErrors(t *testing.T) {
	v := New()

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	err := v.Validate(&dto.UpdateTagsRequest{TagsNew: []dto.NewTag{{Name: "ok"}, {Name: string(long)}}})
	require.Error(t, err)

	verr := err.(*ValidationError)
	assert.Contains(t, verr.Errors, "tags_new[1].name")
}

package validation

import (
	"html"
	"strings"

	"board-client/models"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizePostCreate returns data with markup stripped from every field.
func SanitizePostCreate(data models.PostCreateData) models.PostCreateData {
	data.Title = SanitizeInput(data.Title)
	data.Content = SanitizeInput(data.Content)
	data.Author = SanitizeInput(data.Author)
	data.Category = SanitizeInput(data.Category)
	return data
}

// SanitizePostUpdate returns a copy of data with markup stripped from the set
// fields. The caller's strings are not modified.
func SanitizePostUpdate(data models.PostUpdateData) models.PostUpdateData {
	data.Title = sanitizePtr(data.Title)
	data.Content = sanitizePtr(data.Content)
	data.Author = sanitizePtr(data.Author)
	data.Category = sanitizePtr(data.Category)
	return data
}

// ValidatePostCreate validates a new post. Fields are checked after markup is
// stripped, so a title made only of tags counts as missing. It does not change
// data; callers that store the post send SanitizePostCreate(data).
func ValidatePostCreate(data models.PostCreateData) error {
	return validateStruct(SanitizePostCreate(data))
}

// ValidatePostUpdate validates a partial update. Only the fields that are set
// are checked, and at least one must be set.
func ValidatePostUpdate(data models.PostUpdateData) error {
	if data.Empty() {
		return Errorf("update must set at least one field")
	}
	return validateStruct(SanitizePostUpdate(data))
}

// ValidateListParams rejects negative paging values and unknown search fields.
// Zero values are left for the caller to default.
func ValidateListParams(params models.PostListParams) error {
	return validateStruct(params)
}

// ValidateID checks that a post id was supplied.
func ValidateID(id models.ID) error {
	if strings.TrimSpace(string(id)) == "" {
		return Errorf("id: required")
	}
	return nil
}

// maxSanitizePasses bounds how often escaped markup is re-sanitized.
const maxSanitizePasses = 4

// SanitizeInput strips all markup and surrounding whitespace. The result is
// plain text: entities the policy escapes are decoded again, so "Q&A" stays
// "Q&A", and decoded text is sanitized again until it no longer changes.
func SanitizeInput(input string) string {
	out := input
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := SanitizeInput(*s)
	return &v
}

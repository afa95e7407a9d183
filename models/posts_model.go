package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AllCategories is the filter sentinel meaning "every category". It is never
// stored on a post.
const AllCategories = "전체"

// DefaultCategories is the category list shown when none can be derived.
var DefaultCategories = []string{AllCategories, "교육", "홍보", "자격", "행사", "채용", "공지"}

// ID is a post identifier. The backend may hand it out as a JSON string or a
// JSON number; it is always carried as a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Numeric reports whether the id is a plain integer.
func (id ID) Numeric() bool {
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

type Post struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"authorId,omitempty"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Views     int       `json:"views"`
	HasFile   bool      `json:"hasFile"`
}

// timestampLayouts are tried in order when decoding createdAt. Zone-less
// forms are read as UTC; fractional seconds are accepted by every layout.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp decodes a createdAt value: an ISO-8601 string in any of
// timestampLayouts or a number of Unix milliseconds. Anything else, including
// null, yields the zero time so one bad record cannot fail a whole list.
func ParseTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}
	if raw[0] != '"' {
		var ms json.Number
		if err := json.Unmarshal(raw, &ms); err != nil {
			return time.Time{}
		}
		n, err := ms.Int64()
		if err != nil {
			return time.Time{}
		}
		return time.UnixMilli(n).UTC()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// UnmarshalJSON decodes a post leniently: createdAt goes through
// ParseTimestamp and is left untouched when the key is absent.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CreatedAt != nil {
		p.CreatedAt = ParseTimestamp(aux.CreatedAt)
	}
	return nil
}

// Field returns the value of a searchable field. Unknown fields read as "".
func (p Post) Field(field SearchField) string {
	switch field {
	case SearchFieldTitle:
		return p.Title
	case SearchFieldContent:
		return p.Content
	case SearchFieldAuthor:
		return p.Author
	}
	return ""
}

type PostCreateData struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Category string `json:"category" validate:"required,ne=전체"`
}

// PostUpdateData is a partial update. Nil fields are left untouched.
type PostUpdateData struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Content  *string `json:"content,omitempty" validate:"omitempty,min=1"`
	Author   *string `json:"author,omitempty" validate:"omitempty,min=1"`
	Category *string `json:"category,omitempty" validate:"omitempty,min=1,ne=전체"`
	Views    *int    `json:"views,omitempty" validate:"omitempty,gte=0"`
}

// Empty reports whether no field is set.
func (d PostUpdateData) Empty() bool {
	return d.Title == nil && d.Content == nil && d.Author == nil && d.Category == nil && d.Views == nil
}

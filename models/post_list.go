package models

type SearchField string

const (
	SearchFieldTitle   SearchField = "title"
	SearchFieldContent SearchField = "content"
	SearchFieldAuthor  SearchField = "author"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PostListParams selects one page of posts. Zero Page, Limit and SearchField
// mean "use the default".
type PostListParams struct {
	Page        int         `json:"page" validate:"gte=0"`
	Limit       int         `json:"limit" validate:"gte=0"`
	Category    string      `json:"category,omitempty"`
	Search      string      `json:"search,omitempty"`
	SearchField SearchField `json:"searchField,omitempty" validate:"omitempty,oneof=title content author"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type PostListResponse struct {
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// PageEnvelope is the backend's paginated list body.
type PageEnvelope struct {
	Data  []Post `json:"data"`
	First int    `json:"first"`
	Prev  *int   `json:"prev"`
	Next  *int   `json:"next"`
	Last  int    `json:"last"`
	Pages int    `json:"pages"`
	Items int    `json:"items"`
}

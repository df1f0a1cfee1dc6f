package audit

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListResponse struct {
	Entries    []EntryView `json:"entries"`
	Pagination Pagination  `json:"pagination"`
}

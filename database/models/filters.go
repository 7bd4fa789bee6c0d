package models

// Filter narrows record listings. Empty fields match everything.
type Filter struct {
	Status    string
	Recipient string
	Address   string
	Txid      string
}

// PaginatedResult wraps a page of records with its total count.
type PaginatedResult struct {
	Items      interface{} `json:"items"`
	TotalCount int64       `json:"total_count"`
	Page       int64       `json:"page"`
	PageSize   int64       `json:"page_size"`
}

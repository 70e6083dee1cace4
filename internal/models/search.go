package models

// SearchFilters narrow a subject search. Nil fields are not applied.
type SearchFilters struct {
	Day          *int     `json:"day,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	HasTeacher   *bool    `json:"hasTeacher,omitempty"`
	HasRoom      *bool    `json:"hasRoom,omitempty"`
	IsExtraClass *bool    `json:"isExtraClass,omitempty"`
}

// Supplied reports whether any filter field was given, even an empty tag list.
func (f SearchFilters) Supplied() bool {
	return f.Day != nil || f.Tags != nil || f.HasTeacher != nil || f.HasRoom != nil || f.IsExtraClass != nil
}

// SearchResult is a derived, read-only view over the subject list.
type SearchResult struct {
	Results    []Subject `json:"results"`
	Count      int       `json:"count"`
	HasResults bool      `json:"hasResults"`
	IsEmpty    bool      `json:"isEmpty"`
	IsFiltered bool      `json:"isFiltered"`
}

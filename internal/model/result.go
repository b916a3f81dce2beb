package model

// SearchResult is one record of a streaming search response.
type SearchResult struct {
	File       string        `json:"file"`
	LineNumber int           `json:"line_number"`
	Content    string        `json:"content"`
	Match      *MatchDetails `json:"match_details,omitempty"`
	NodeID     string        `json:"node_id,omitempty"`
	NodeName   string        `json:"node_name,omitempty"`
}

// MatchDetails carries the structured view of a matched record: the fields
// the server parsed out of the line and which filters they satisfied.
type MatchDetails struct {
	ParsedFields   map[string]any  `json:"parsed_fields,omitempty"`
	MatchedFilters []MatchedFilter `json:"matched_filters,omitempty"`
}

// MatchedFilter records one satisfied filter clause.
type MatchedFilter struct {
	Field       string `json:"field"`
	Operator    string `json:"operator"`
	Value       any    `json:"value"`
	ActualValue any    `json:"actual_value,omitempty"`
}

// Field returns a parsed field value, or nil when the record carries no
// structured details.
func (r SearchResult) Field(name string) any {
	if r.Match == nil || r.Match.ParsedFields == nil {
		return nil
	}
	return r.Match.ParsedFields[name]
}

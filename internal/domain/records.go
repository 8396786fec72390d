package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// PostID accepts both the numeric ids written by the scraper and the
// file-name ids derived from debug dumps.
type PostID string

func (id *PostID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = PostID(n.String())
	return nil
}

func (id PostID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.Atoi(string(id)); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// RawPost is one {id, text} record as produced by the scraper
type RawPost struct {
	ID   PostID `json:"id"`
	Text string `json:"text"`
}

// PostFields are the semantic fields extracted from a scenic post
type PostFields struct {
	Audience    string   `json:"适用人群"`
	Style       string   `json:"写作风格"`
	CharCount   int      `json:"文案字数"`
	Merchant    string   `json:"商户"`
	ProductName string   `json:"商品名称"`
	Landmarks   []string `json:"景点名称"`
	Locations   []string `json:"地点信息"`
	Prices      []string `json:"价格信息"`
	Services    []string `json:"服务内容"`
	Keywords    []string `json:"其他关键词"`
}

// CleanedRecord is a scenic post augmented with its extracted fields
type CleanedRecord struct {
	ID           PostID `json:"id"`
	OriginalText string `json:"original_text"`
	PostFields
}

// PatternEntry is one {content, keyword} sample used by the generator
type PatternEntry struct {
	Content string `json:"content"`
	Keyword string `json:"keyword"`
}

// Patterns is the aggregated-patterns document read by the generator
type Patterns struct {
	Points        map[string][]PatternEntry `json:"points"`
	Sections      map[string][]PatternEntry `json:"sections"`
	SpecialOffers []PatternEntry            `json:"special_offers"`
}

// NewPatterns returns an empty, writable Patterns
func NewPatterns() *Patterns {
	return &Patterns{
		Points:        make(map[string][]PatternEntry),
		Sections:      make(map[string][]PatternEntry),
		SpecialOffers: []PatternEntry{},
	}
}

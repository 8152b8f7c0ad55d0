package gamma

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/polycache/internal/normalize"
)

// Event is the subset of a Gamma event the cache persists.
// String fields left empty mean the API omitted them.
type Event struct {
	ID          string   `json:"id"`
	Ticker      string   `json:"ticker"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Volume      Float    `json:"volume"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	EndDate     string   `json:"endDate"`
	Active      *bool    `json:"active"`
	Closed      *bool    `json:"closed"`
	Markets     []Market `json:"markets"`
}

type Market struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Question     string     `json:"question"`
	ConditionID  string     `json:"conditionId"`
	Description  string     `json:"description"`
	Outcomes     StringList `json:"outcomes"`
	VolumeNum    Float      `json:"volumeNum"`
	ClobTokenIDs StringList `json:"clobTokenIds"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
	EndDate      string     `json:"endDate"`
}

type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// Float accepts a JSON number, a numeric string, or null.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %s", string(b))
	}
	*f = Float(v)
	return nil
}

// StringList accepts a JSON array of strings or a string holding an encoded
// list, which is how Gamma ships outcomes and clobTokenIds.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid string list: %s", string(b))
	}
	*l = normalize.DecodeList(s)
	return nil
}

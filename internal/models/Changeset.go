package models

import "github.com/spf13/cast"

const (
	MetaAnswer   = "answer"
	MetaAddImage = "add-image"
	MetaCreate   = "create"
	MetaDelete   = "delete"
	MetaMove     = "move"
)

// Changeset is one MapComplete edit session as reported by the review API.
type Changeset struct {
	Id       int64             `json:"id"`
	User     string            `json:"user"`
	UserId   string            `json:"userId"`
	Theme    string            `json:"theme"`
	Host     string            `json:"host"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Counter returns the integer value of an optional metadata counter.
// Missing or unparsable values count as 0.
func (c *Changeset) Counter(key string) int {
	raw, ok := c.Metadata[key]
	if !ok {
		return 0
	}
	val, err := cast.ToIntE(raw)
	if err != nil {
		return 0
	}
	return val
}

// UserKey identifies the author for distinct-user counting.
func (c *Changeset) UserKey() string {
	if c.UserId != "" {
		return c.UserId
	}
	return c.User
}

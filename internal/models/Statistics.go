package models

// CountStats is a distinct-key count with its ranking.
type CountStats struct {
	Total  int        `json:"total"`
	Top    *string    `json:"top"`
	Counts []KeyCount `json:"counts"`
}

// ChangesetSummary is one entry of the per-changeset list. Color is nil when
// the theme color could not be resolved for this changeset.
type ChangesetSummary struct {
	Id    int64   `json:"id"`
	User  string  `json:"user"`
	Theme string  `json:"theme"`
	Color *string `json:"color"`
}

// ChangesetStats carries the "last" fields, which are either all set or all nil.
type ChangesetStats struct {
	Total     int                `json:"total"`
	Last      *int64             `json:"last"`
	LastUser  *string            `json:"lastUser"`
	LastTheme *string            `json:"lastTheme"`
	LastColor *string            `json:"lastColor"`
	List      []ChangesetSummary `json:"list"`
}

type Rollups struct {
	Questions int `json:"questions"`
	Images    int `json:"images"`
	Points    int `json:"points"`
	Deleted   int `json:"deleted"`
	Moved     int `json:"moved"`
}

func (r *Rollups) Add(c *Changeset) {
	r.Questions += c.Counter(MetaAnswer)
	r.Images += c.Counter(MetaAddImage)
	r.Points += c.Counter(MetaCreate)
	r.Deleted += c.Counter(MetaDelete)
	r.Moved += c.Counter(MetaMove)
}

// Statistics is recomputed from DailyState every cycle.
type Statistics struct {
	Changesets ChangesetStats `json:"changesets"`
	Users      CountStats     `json:"users"`
	Themes     CountStats     `json:"themes"`
	Questions  int            `json:"questions"`
	Images     int            `json:"images"`
	Points     int            `json:"points"`
	Deleted    int            `json:"deleted"`
	Moved      int            `json:"moved"`

	PerTheme []*ThemeStatistics `json:"-"`
}

type ThemeChangesetStats struct {
	Total    int     `json:"total"`
	Last     *int64  `json:"last"`
	LastUser *string `json:"lastUser"`
}

// ThemeStatistics is the breakdown published under a theme's own topic tree.
type ThemeStatistics struct {
	Id         string              `json:"id"`
	Title      string              `json:"title"`
	Icon       string              `json:"icon"`
	Color      string              `json:"color"`
	Changesets ThemeChangesetStats `json:"changesets"`
	Users      CountStats          `json:"users"`
	Questions  int                 `json:"questions"`
	Images     int                 `json:"images"`
	Points     int                 `json:"points"`
	Deleted    int                 `json:"deleted"`
	Moved      int                 `json:"moved"`
}

// EmptyThemeStatistics is the zeroed payload used to retire a theme's sensor values.
func EmptyThemeStatistics(info ThemeInfo) *ThemeStatistics {
	return &ThemeStatistics{
		Id:    info.Id,
		Title: info.Title,
		Icon:  info.IconUrl,
		Color: info.Color,
		Users: CountStats{Counts: []KeyCount{}},
	}
}

func (ts *ThemeStatistics) SetRollups(r Rollups) {
	ts.Questions = r.Questions
	ts.Images = r.Images
	ts.Points = r.Points
	ts.Deleted = r.Deleted
	ts.Moved = r.Moved
}

func (s *Statistics) SetRollups(r Rollups) {
	s.Questions = r.Questions
	s.Images = r.Images
	s.Points = r.Points
	s.Deleted = r.Deleted
	s.Moved = r.Moved
}

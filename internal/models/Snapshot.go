package models

const SnapshotVersion = 1

// ThemeSnapshot is the on-disk format of the theme cache.
type ThemeSnapshot struct {
	Version int         `json:"version"`
	Themes  []ThemeInfo `json:"themes"`
}

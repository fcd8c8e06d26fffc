package services

import (
	"context"
	"fmt"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	upstreamDateLayout = "2006-01-02 15:04"
	maxPageBytes       = 16 << 20
	unknownTheme       = "unknown"
)

type ChangesetServiceInterface interface {
	// Fetch returns one page of changesets created since the given time.
	// On failure the slice is empty and the error describes why.
	Fetch(ctx context.Context, since time.Time, pageSize int) ([]*models.Changeset, error)
}

type ChangesetService struct {
	client  *http.Client
	baseUrl string
	token   string
	editor  string
	retry   RetryOptions
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Id         any               `json:"id"`
	Properties featureProperties `json:"properties"`
}

type featureProperties struct {
	User     string         `json:"user"`
	Uid      any            `json:"uid"`
	Metadata map[string]any `json:"metadata"`
}

func NewChangesetService(conf *structures.Config, client *http.Client) ChangesetServiceInterface {
	return &ChangesetService{
		client:  client,
		baseUrl: conf.Upstream.URL,
		token:   conf.Upstream.Token,
		editor:  conf.Upstream.Editor,
		retry:   FetchRetryOptions(),
	}
}

// encodeComponent escapes like a browser's encodeURIComponent, so spaces become %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (cs *ChangesetService) queryUrl(since time.Time, pageSize int) string {
	if pageSize <= 0 {
		pageSize = 100
	}
	sep := "?"
	if strings.Contains(cs.baseUrl, "?") {
		sep = "&"
	}
	return cs.baseUrl + sep +
		"date__gte=" + encodeComponent(since.UTC().Format(upstreamDateLayout)) +
		"&editor=" + encodeComponent(cs.editor) +
		"&page_size=" + strconv.Itoa(pageSize)
}

func (cs *ChangesetService) Fetch(ctx context.Context, since time.Time, pageSize int) ([]*models.Changeset, error) {
	target := cs.queryUrl(since, pageSize)

	page, err := WithRetry(ctx, func() (*featureCollection, error) {
		return cs.fetchPage(ctx, target)
	}, cs.retry)
	if err != nil {
		return []*models.Changeset{}, err
	}

	out := make([]*models.Changeset, 0, len(page.Features))
	for _, f := range page.Features {
		c, err := f.toChangeset()
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (cs *ChangesetService) fetchPage(ctx context.Context, target string) (*featureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Token "+cs.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", providers.UserAgent)

	resp, err := cs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting changesets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("changeset API returned %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var page featureCollection
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPageBytes)).Decode(&page); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decoding changesets: %w", err))
	}
	return &page, nil
}

func (f *feature) toChangeset() (*models.Changeset, error) {
	id, err := cast.ToInt64E(f.Id)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid changeset id %v", f.Id)
	}

	meta := make(map[string]string, len(f.Properties.Metadata))
	for k, v := range f.Properties.Metadata {
		meta[k] = cast.ToString(v)
	}

	theme := meta["theme"]
	if theme == "" {
		theme = unknownTheme
	}

	return &models.Changeset{
		Id:       id,
		User:     f.Properties.User,
		UserId:   cast.ToString(f.Properties.Uid),
		Theme:    theme,
		Host:     meta["host"],
		Metadata: meta,
	}, nil
}

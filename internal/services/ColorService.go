package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/tidwall/gjson"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxDownloadBytes = 5 << 20

var errEmptyTheme = errors.New("changeset has no theme")

// staticColors pins themes whose icons sample badly.
var staticColors = map[string]string{
	"cyclofix":       "#e2783d",
	"etymology":      "#d24a1e",
	"toilets":        "#3d8fd4",
	"grb":            "#ffe119",
	"onwheels":       "#1e6fb8",
	"personal":       "#70c549",
	"shops":          "#f29d38",
	"advertising":    "#c33ad6",
	"benches":        "#8a5a2b",
	"playgrounds":    "#6fbf73",
	"drinking_water": "#5ec5f2",
}

type ColorServiceInterface interface {
	// Resolve returns display info for theme, using and filling cache.
	// Lookup problems degrade to defaults; an error is only returned when no
	// info can be attributed to the theme at all.
	Resolve(ctx context.Context, cache *models.ThemeCache, theme string, host string) (models.ThemeInfo, error)
}

// themeSource tells where a theme definition lives and what relative icon paths resolve against.
type themeSource struct {
	definition string
	base       string
}

// sourceRule maps an editing host onto the repository branch serving its themes.
type sourceRule struct {
	name   string
	match  func(host *url.URL) bool
	branch func(host *url.URL) string
}

type ColorService struct {
	client       *http.Client
	logger       providers.Logger
	metrics      providers.MetricsProviderInterface
	repoBase     string
	defaultColor string
	defaultIcon  string
	rules        []sourceRule
}

func NewColorService(conf *structures.Config, client *http.Client, logger providers.Logger, metrics providers.MetricsProviderInterface) ColorServiceInterface {
	repoBase := conf.Theme.RepositoryBase
	if !strings.HasSuffix(repoBase, "/") {
		repoBase += "/"
	}
	return &ColorService{
		client:       client,
		logger:       logger,
		metrics:      metrics,
		repoBase:     repoBase,
		defaultColor: conf.Theme.DefaultColor,
		defaultIcon:  conf.Theme.DefaultIcon,
		rules:        defaultSourceRules(),
	}
}

func defaultSourceRules() []sourceRule {
	return []sourceRule{
		{
			name: "production",
			match: func(h *url.URL) bool {
				switch h.Hostname() {
				case "mapcomplete.org", "www.mapcomplete.org", "mapcomplete.osm.be":
					return true
				}
				return false
			},
			branch: func(_ *url.URL) string { return "master" },
		},
		{
			name:   "develop",
			match:  func(h *url.URL) bool { return h.Hostname() == "dev.mapcomplete.org" },
			branch: func(_ *url.URL) string { return "develop" },
		},
		{
			// https://pietervdvn.github.io/mc/<branch>/...
			name: "preview",
			match: func(h *url.URL) bool {
				segments := pathSegments(h)
				return h.Hostname() == "pietervdvn.github.io" && len(segments) >= 2 && segments[0] == "mc"
			},
			branch: func(h *url.URL) string { return pathSegments(h)[1] },
		},
	}
}

func pathSegments(u *url.URL) []string {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseHost(host string) (*url.URL, error) {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return url.Parse(host)
}

func isFullUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// locate returns where the theme definition can be found, or false when the
// host matches no known deployment.
func (cs *ColorService) locate(theme string, host string) (themeSource, bool) {
	if isFullUrl(theme) {
		return themeSource{definition: theme, base: theme}, true
	}
	h, err := parseHost(host)
	if err != nil || host == "" {
		return themeSource{}, false
	}
	for _, rule := range cs.rules {
		if !rule.match(h) {
			continue
		}
		base := cs.repoBase + rule.branch(h) + "/"
		id := url.PathEscape(theme)
		return themeSource{
			definition: base + "assets/themes/" + id + "/" + id + ".json",
			base:       base,
		}, true
	}
	return themeSource{}, false
}

func (cs *ColorService) fallback(theme string) models.ThemeInfo {
	return models.ThemeInfo{
		Id:      theme,
		Title:   theme,
		IconUrl: cs.defaultIcon,
		Color:   cs.defaultColor,
	}
}

func (cs *ColorService) Resolve(ctx context.Context, cache *models.ThemeCache, theme string, host string) (models.ThemeInfo, error) {
	if theme == "" {
		return models.ThemeInfo{}, errEmptyTheme
	}
	if info, ok := cache.Get(theme); ok {
		cs.metrics.IncColorResolution(providers.ColorOutcomeCached)
		return info, nil
	}
	if err := ctx.Err(); err != nil {
		return models.ThemeInfo{}, fmt.Errorf("resolving %s: %w", theme, err)
	}

	info := cs.resolve(ctx, theme, host)
	cache.Set(theme, info)
	info, _ = cache.Get(theme)
	return info, nil
}

func (cs *ColorService) resolve(ctx context.Context, theme string, host string) models.ThemeInfo {
	source, ok := cs.locate(theme, host)
	if !ok {
		cs.logger.Debugf(providers.TypeColor, "No theme source for %s on host %q, using defaults", theme, host)
		cs.metrics.IncColorResolution(providers.ColorOutcomeUnresolvable)
		return cs.fallback(theme)
	}

	info, outcome, err := cs.resolveFrom(ctx, theme, source)
	if err != nil {
		cs.logger.Errorf(providers.TypeColor, "Resolving theme %s failed: %s", theme, err)
		cs.metrics.IncColorResolution(providers.ColorOutcomeFailed)
		return cs.fallback(theme)
	}
	cs.logger.Infof(providers.TypeColor, "Resolved theme %s: %s (%s)", theme, info.Color, outcome)
	cs.metrics.IncColorResolution(outcome)
	return info
}

func (cs *ColorService) resolveFrom(ctx context.Context, theme string, source themeSource) (models.ThemeInfo, string, error) {
	body, _, err := cs.download(ctx, source.definition)
	if err != nil {
		return models.ThemeInfo{}, "", fmt.Errorf("fetching definition: %w", err)
	}
	icon, title, err := parseDefinition(body, theme)
	if err != nil {
		return models.ThemeInfo{}, "", err
	}
	iconUrl, err := resolveIcon(source.base, icon)
	if err != nil {
		return models.ThemeInfo{}, "", err
	}

	info := models.ThemeInfo{Id: theme, Title: title, IconUrl: iconUrl}

	if fixed, ok := staticColors[theme]; ok {
		info.Color = fixed
		return info, providers.ColorOutcomeStatic, nil
	}

	data, contentType, err := cs.download(ctx, iconUrl)
	if err != nil {
		return models.ThemeInfo{}, "", fmt.Errorf("fetching icon: %w", err)
	}
	img, err := decodeIcon(data, contentType)
	if err != nil {
		return models.ThemeInfo{}, "", err
	}
	sampled, err := averageColor(img)
	if err != nil {
		return models.ThemeInfo{}, "", err
	}
	if isDark(sampled) {
		info.Color = cs.defaultColor
		return info, providers.ColorOutcomeDark, nil
	}
	info.Color = hexColor(sampled)
	return info, providers.ColorOutcomeSampled, nil
}

// parseDefinition reads icon and title. A localized title prefers "en" and
// otherwise takes the first entry in document order.
func parseDefinition(body []byte, theme string) (string, string, error) {
	if !gjson.ValidBytes(body) {
		return "", "", errors.New("theme definition is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	icon := doc.Get("icon")
	if icon.Type != gjson.String || icon.Str == "" {
		return "", "", errors.New("theme definition has no icon")
	}

	title := theme
	raw := doc.Get("title")
	switch {
	case raw.Type == gjson.String && raw.Str != "":
		title = raw.Str
	case raw.IsObject():
		if en := raw.Get("en"); en.Type == gjson.String {
			title = en.Str
			break
		}
		raw.ForEach(func(_, value gjson.Result) bool {
			title = value.String()
			return false
		})
	}
	return icon.Str, title, nil
}

func resolveIcon(base string, icon string) (string, error) {
	if !strings.HasPrefix(icon, ".") {
		return icon, nil
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	ref, err := url.Parse(icon)
	if err != nil {
		return "", fmt.Errorf("invalid icon path %q: %w", icon, err)
	}
	return baseUrl.ResolveReference(ref).String(), nil
}

func (cs *ColorService) download(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", providers.UserAgent)

	resp, err := cs.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("GET %s returned %s", target, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

package services

import (
	"errors"
	"fmt"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

type PublishServiceInterface interface {
	PublishStatistics(stats *models.Statistics) error
	PublishThemeStatistics(ts *models.ThemeStatistics) error
	PublishGlobalDiscovery() error
	PublishThemeDiscovery(cache *models.ThemeCache, themeIds []string) error
	CleanupRemovedThemes(cache *models.ThemeCache, presentThemeIds []string) error
}

// PublishService maps statistics onto a retained topic tree.
//
// A value is published whole under its root topic. Each first-level key is
// published under root/key: mappings as JSON, with every entry also published
// under root/key/subkey; strings and numbers as plain text; anything else as
// JSON. Deeper levels are never split further.
type PublishService struct {
	sink            providers.SinkProviderInterface
	logger          providers.Logger
	metrics         providers.MetricsProviderInterface
	topicPrefix     string
	discoveryPrefix string
}

func NewPublishService(conf *structures.Config, sink providers.SinkProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PublishServiceInterface {
	return &PublishService{
		sink:            sink,
		logger:          logger,
		metrics:         metrics,
		topicPrefix:     conf.Broker.TopicPrefix,
		discoveryPrefix: conf.Broker.DiscoveryPrefix,
	}
}

func (ps *PublishService) ThemeTopic(themeId string) string {
	return ps.topicPrefix + "/theme/" + models.SanitizeThemeId(themeId)
}

func (ps *PublishService) publish(topic string, payload []byte) error {
	if err := ps.sink.Publish(topic, payload); err != nil {
		ps.metrics.IncPublishErrors()
		ps.logger.Warnf(providers.TypePublish, "Publishing %s failed: %s", topic, err)
		return err
	}
	ps.metrics.IncPublished()
	return nil
}

// leafPayload renders strings and numbers as plain text and everything else as JSON.
func leafPayload(v gjson.Result) []byte {
	switch v.Type {
	case gjson.String:
		return []byte(v.Str)
	default:
		return []byte(v.Raw)
	}
}

// publishTree publishes value under root and flattens it two levels deep.
// Failed publishes are logged and skipped; the joined error is returned.
func (ps *PublishService) publishTree(root string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", root, err)
	}

	var errs []error
	if err := ps.publish(root, payload); err != nil {
		errs = append(errs, err)
	}

	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return errors.Join(errs...)
	}
	doc.ForEach(func(key, val gjson.Result) bool {
		topic := root + "/" + key.String()
		if val.IsObject() {
			val.ForEach(func(subKey, subVal gjson.Result) bool {
				if err := ps.publish(topic+"/"+subKey.String(), leafPayload(subVal)); err != nil {
					errs = append(errs, err)
				}
				return true
			})
			if err := ps.publish(topic, []byte(val.Raw)); err != nil {
				errs = append(errs, err)
			}
			return true
		}
		if err := ps.publish(topic, leafPayload(val)); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

// PublishStatistics publishes the global tree followed by every per-theme tree.
func (ps *PublishService) PublishStatistics(stats *models.Statistics) error {
	errs := []error{ps.publishTree(ps.topicPrefix, stats)}
	for _, ts := range stats.PerTheme {
		errs = append(errs, ps.PublishThemeStatistics(ts))
	}
	return errors.Join(errs...)
}

func (ps *PublishService) PublishThemeStatistics(ts *models.ThemeStatistics) error {
	return ps.publishTree(ps.ThemeTopic(ts.Id), ts)
}

// CleanupRemovedThemes publishes zeroed statistics for cached themes absent
// from presentThemeIds. Discovery entries are left in place.
func (ps *PublishService) CleanupRemovedThemes(cache *models.ThemeCache, presentThemeIds []string) error {
	present := make(map[string]struct{}, len(presentThemeIds))
	for _, id := range presentThemeIds {
		present[id] = struct{}{}
	}

	var errs []error
	for _, info := range cache.Snapshot() {
		if _, ok := present[info.Id]; ok {
			continue
		}
		ps.logger.Debugf(providers.TypePublish, "Retiring statistics of theme %s", info.Id)
		errs = append(errs, ps.publishTree(ps.ThemeTopic(info.Id), models.EmptyThemeStatistics(info)))
	}
	return errors.Join(errs...)
}

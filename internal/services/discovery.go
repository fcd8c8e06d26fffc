package services

import (
	"errors"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	json "github.com/goccy/go-json"
)

const (
	discoveryNode   = "mapcomplete"
	componentSensor = "sensor"
	componentImage  = "image"
	manufacturer    = "MapComplete"
)

// DiscoveryPayload describes one entity to a Home Assistant style hub.
type DiscoveryPayload struct {
	Name              string           `json:"name"`
	StateTopic        string           `json:"state_topic,omitempty"`
	UrlTopic          string           `json:"url_topic,omitempty"`
	Icon              string           `json:"icon,omitempty"`
	UniqueId          string           `json:"unique_id"`
	UnitOfMeasurement string           `json:"unit_of_measurement,omitempty"`
	ValueTemplate     string           `json:"value_template,omitempty"`
	Device            *DiscoveryDevice `json:"device,omitempty"`
}

type DiscoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
}

// sensorSpec is one metric exposed per theme or globally.
type sensorSpec struct {
	key           string
	name          string
	component     string
	topic         string
	icon          string
	unit          string
	valueTemplate string
}

var globalSensors = []sensorSpec{
	{key: "changesets", name: "Changesets today", topic: "changesets/total", icon: "mdi:map-marker-multiple", unit: "changesets"},
	{key: "last_changeset", name: "Last changeset", topic: "changesets", icon: "mdi:map-marker", valueTemplate: "{{ value_json.last }}"},
	{key: "last_user", name: "Last user", topic: "changesets/lastUser", icon: "mdi:account-clock"},
	{key: "last_theme", name: "Last theme", topic: "changesets/lastTheme", icon: "mdi:palette"},
	{key: "last_color", name: "Last theme color", topic: "changesets/lastColor", icon: "mdi:format-color-fill"},
	{key: "users", name: "Users today", topic: "users/total", icon: "mdi:account-multiple", unit: "users"},
	{key: "top_user", name: "Top user", topic: "users/top", icon: "mdi:account-star"},
	{key: "themes", name: "Themes today", topic: "themes/total", icon: "mdi:palette-swatch", unit: "themes"},
	{key: "top_theme", name: "Top theme", topic: "themes/top", icon: "mdi:star"},
	{key: "questions", name: "Questions answered", topic: "questions", icon: "mdi:comment-question", unit: "answers"},
	{key: "images", name: "Images added", topic: "images", icon: "mdi:image-plus", unit: "images"},
	{key: "points", name: "Points created", topic: "points", icon: "mdi:map-marker-plus", unit: "points"},
	{key: "deleted", name: "Points deleted", topic: "deleted", icon: "mdi:map-marker-remove", unit: "points"},
	{key: "moved", name: "Points moved", topic: "moved", icon: "mdi:map-marker-right", unit: "points"},
}

var themeSensors = []sensorSpec{
	{key: "changesets", name: "Changesets", topic: "changesets/total", icon: "mdi:map-marker-multiple", unit: "changesets"},
	{key: "icon", name: "Icon", component: componentImage, topic: "icon"},
	{key: "users", name: "Users", topic: "users/total", icon: "mdi:account-multiple", unit: "users"},
	{key: "last_user", name: "Last user", topic: "changesets/lastUser", icon: "mdi:account-clock"},
	{key: "top_user", name: "Top user", topic: "users/top", icon: "mdi:account-star"},
	{key: "questions", name: "Questions answered", topic: "questions", icon: "mdi:comment-question", unit: "answers"},
	{key: "images", name: "Images added", topic: "images", icon: "mdi:image-plus", unit: "images"},
	{key: "points", name: "Points created", topic: "points", icon: "mdi:map-marker-plus", unit: "points"},
}

func (s sensorSpec) componentName() string {
	if s.component == "" {
		return componentSensor
	}
	return s.component
}

func (ps *PublishService) discoveryTopic(component, uniqueId string) string {
	return ps.discoveryPrefix + "/" + component + "/" + discoveryNode + "/" + uniqueId + "/config"
}

func (ps *PublishService) discoveryPayload(spec sensorSpec, stateRoot string, uniqueId string, device *DiscoveryDevice) DiscoveryPayload {
	payload := DiscoveryPayload{
		Name:              spec.name,
		Icon:              spec.icon,
		UniqueId:          uniqueId,
		UnitOfMeasurement: spec.unit,
		ValueTemplate:     spec.valueTemplate,
		Device:            device,
	}
	if spec.componentName() == componentImage {
		payload.UrlTopic = stateRoot + "/" + spec.topic
	} else {
		payload.StateTopic = stateRoot + "/" + spec.topic
	}
	return payload
}

func (ps *PublishService) publishDiscovery(specs []sensorSpec, stateRoot string, idPrefix string, device *DiscoveryDevice) error {
	var errs []error
	for _, spec := range specs {
		uniqueId := idPrefix + "_" + spec.key
		payload, err := json.Marshal(ps.discoveryPayload(spec, stateRoot, uniqueId, device))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := ps.publish(ps.discoveryTopic(spec.componentName(), uniqueId), payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishGlobalDiscovery announces the sensors backed by the global statistics tree.
func (ps *PublishService) PublishGlobalDiscovery() error {
	device := &DiscoveryDevice{
		Identifiers:  []string{discoveryNode},
		Name:         "MapComplete",
		Manufacturer: manufacturer,
		Model:        "Statistics",
	}
	return ps.publishDiscovery(globalSensors, ps.topicPrefix, discoveryNode, device)
}

// PublishThemeDiscovery announces every listed theme that has not been
// announced yet and marks it published. Themes missing from the cache are skipped.
func (ps *PublishService) PublishThemeDiscovery(cache *models.ThemeCache, themeIds []string) error {
	var errs []error
	for _, id := range themeIds {
		info, ok := cache.Get(id)
		if !ok || info.Published {
			continue
		}
		sanitized := models.SanitizeThemeId(id)
		idPrefix := discoveryNode + "_" + sanitized
		device := &DiscoveryDevice{
			Identifiers:  []string{idPrefix},
			Name:         "MapComplete " + info.Title,
			Manufacturer: manufacturer,
			Model:        "Theme",
		}
		if err := ps.publishDiscovery(themeSensors, ps.ThemeTopic(id), idPrefix, device); err != nil {
			errs = append(errs, err)
			continue
		}
		cache.MarkPublished(id)
		ps.logger.Infof(providers.TypePublish, "Announced sensors for theme %s", id)
	}
	return errors.Join(errs...)
}

package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the plant telemetry scheme.
//
// Plant nodes use the flat scheme: planta/{plantId}/{channel}
// where channel is one of lecturas, data, status, command.
const (
	// TopicPrefixPlant is the base for all plant node topics.
	TopicPrefixPlant = "planta"

	// TopicPrefixSystem is the base for plantcore's own system topics.
	TopicPrefixSystem = "plantcore/system"
)

// Plant topic channels.
const (
	channelReadings = "lecturas"
	channelData     = "data"
	channelStatus   = "status"
	channelCommand  = "command"
)

// Topics provides builders for plantcore MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.PlantCommand("planta1")
//	// Returns: "planta/planta1/command"
type Topics struct{}

// PlantReadings returns the primary telemetry topic for a plant node.
//
// Example: planta/planta1/lecturas
func (Topics) PlantReadings(plantID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixPlant, plantID, channelReadings)
}

// PlantData returns the legacy telemetry topic for a plant node.
// Older firmware publishes readings here instead of the lecturas channel.
//
// Example: planta/planta1/data
func (Topics) PlantData(plantID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixPlant, plantID, channelData)
}

// PlantStatus returns the availability topic for a plant node.
// Nodes publish their own LWT here.
//
// Example: planta/planta1/status
func (Topics) PlantStatus(plantID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixPlant, plantID, channelStatus)
}

// PlantCommand returns the actuation command topic for a plant node.
//
// Example: planta/planta1/command
func (Topics) PlantCommand(plantID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixPlant, plantID, channelCommand)
}

// AllReadings returns the wildcard subscription for all plant telemetry.
//
// Example: planta/+/lecturas
func (Topics) AllReadings() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixPlant, channelReadings)
}

// AllData returns the wildcard subscription for legacy telemetry.
//
// Example: planta/+/data
func (Topics) AllData() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixPlant, channelData)
}

// AllStatus returns the wildcard subscription for node availability.
//
// Example: planta/+/status
func (Topics) AllStatus() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixPlant, channelStatus)
}

// SystemStatus returns the topic for plantcore's own online/offline status.
// Used for the service LWT and graceful shutdown announcements.
//
// Example: plantcore/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ParsePlantID extracts the plant identifier from a plant topic.
// The plant ID is always the second segment: planta/{plantId}/{channel}.
//
// Returns:
//   - string: The plant ID
//   - error: ErrInvalidTopic if the topic doesn't match the plant scheme
func ParsePlantID(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[0] != TopicPrefixPlant || parts[1] == "" {
		return "", fmt.Errorf("%w: %q is not a plant topic", ErrInvalidTopic, topic)
	}
	return parts[1], nil
}

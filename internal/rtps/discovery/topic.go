package discovery

import (
	"fmt"

	"github.com/lanterndds/rtpscore/internal/rtps/qos"
)

// DiscoveredTopicData is the decoded SEDP topic sample (spec.md §6's
// DCPSTopic/DiscoveredTopicData).
type DiscoveredTopicData struct {
	TopicName string
	TypeName  string
	Policies  qos.Policies
}

// RegisteredTopic is a locally-registered topic's identity.
type RegisteredTopic struct {
	TopicName string
	TypeName  string
}

// TopicCache tracks locally-registered topics and checks incoming SEDP
// topic samples for consistency against them — a feature the distilled
// spec dropped (SPEC_FULL.md §4.5) because the original's domain
// participant layer already had the status-listener plumbing (spec.md
// §4.8) to report it through.
type TopicCache struct {
	local map[string]RegisteredTopic
}

// NewTopicCache constructs an empty cache.
func NewTopicCache() *TopicCache {
	return &TopicCache{local: make(map[string]RegisteredTopic)}
}

// Register records a locally-created topic.
func (c *TopicCache) Register(t RegisteredTopic) {
	c.local[t.TopicName] = t
}

// CheckConsistent compares a discovered topic sample against a
// same-named local registration. A nil error means either no local topic
// by that name exists (nothing to check) or the two agree; a non-nil
// error carries the mismatch detail that would feed an
// InconsistentTopicStatus event via the status package.
func (c *TopicCache) CheckConsistent(data DiscoveredTopicData) error {
	local, ok := c.local[data.TopicName]
	if !ok {
		return nil
	}
	if local.TypeName != data.TypeName {
		return fmt.Errorf("topic %q: local type %q, discovered type %q", data.TopicName, local.TypeName, data.TypeName)
	}
	return nil
}

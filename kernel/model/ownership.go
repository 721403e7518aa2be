package model

const DefaultOwnershipTag = "virgo:game"

// Ownership marks the resources virgo considers its own. An instance or launch template is
// managed only if it carries the tag key; the tag value records the mode it was launched from.
type Ownership struct {
	TagKey string
}

func NewOwnership(tagKey string) Ownership {
	if tagKey == "" {
		tagKey = DefaultOwnershipTag
	}
	return Ownership{TagKey: tagKey}
}

// FilterName is the provider filter selecting resources that carry the tag, with any value.
func (o Ownership) FilterName() string {
	return "tag:" + o.TagKey
}

const FilterAnyValue = "*"

func (o Ownership) Owns(tags map[string]string) bool {
	_, found := tags[o.TagKey]
	return found
}

// ModeOf returns the recorded mode, or "" for resources without the tag.
func (o Ownership) ModeOf(tags map[string]string) string {
	return tags[o.TagKey]
}

func (o Ownership) Tag(mode string) map[string]string {
	return map[string]string{o.TagKey: mode}
}

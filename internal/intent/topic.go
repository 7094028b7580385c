package intent

import "regexp"

// Topic narrows a package question for template fallbacks.
type Topic string

const (
	TopicAccommodation Topic = "accommodation"
	TopicFood          Topic = "food"
	TopicAttractions   Topic = "attractions"
	TopicGeneral       Topic = "general"
)

var topicRules = []struct {
	topic Topic
	re    *regexp.Regexp
}{
	{TopicAccommodation, keywordPattern("accommodation", "hotel", "stay", "resort", "room")},
	{TopicFood, keywordPattern("food", "restaurant", "meal", "cuisine", "eat", "dining")},
	{TopicAttractions, keywordPattern("nearby", "attraction", "places", "sightseeing", "activity", "activities", "visit")},
}

// PackageTopic returns the sub-topic of a package question.
func PackageTopic(message string) Topic {
	normalized := Normalize(message)
	for _, r := range topicRules {
		if r.re.MatchString(normalized) {
			return r.topic
		}
	}
	return TopicGeneral
}

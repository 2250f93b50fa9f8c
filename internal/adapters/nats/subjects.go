package natsadapter

import "strings"

// Subject suffixes under the configured prefix.
const (
	SuffixStats     = "stats"
	SuffixStop      = "stop"
	SuffixItinerary = "itinerary"
	SuffixMap       = "map"
	SuffixBatch     = "batch"
	SuffixLoaded    = "loaded"
)

// QueueGroup load-balances requests across responder replicas.
const QueueGroup = "transitcat-responders"

// Subject joins prefix and suffix.
func Subject(prefix, suffix string) string {
	return prefix + "." + suffix
}

// LoadedSubject is the snapshot event subject.
func LoadedSubject(prefix string) string {
	return Subject(prefix, SuffixLoaded)
}

// StreamName derives a JetStream stream name from a subject prefix.
func StreamName(prefix string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_", "*", "", ">", "").Replace(prefix))
	return name + "_SNAPSHOTS"
}

package engine

// Classify assigns each relationship to the urgency bucket matching its
// backend-computed status and returns all five buckets in the fixed display
// order, empty ones included. Within a bucket, members sort by
// days-until-attention-needed ascending; relationships without a countdown
// always land at the end of their bucket.
func Classify(relationships []Relationship) []UrgencyGroup {
	groups := make([]UrgencyGroup, len(StatusOrder))
	index := make(map[Status]int, len(StatusOrder))

	for i, status := range StatusOrder {
		groups[i] = UrgencyGroup{Status: status, StatusColor: status.Color()}
		index[status] = i
	}

	for _, relationship := range relationships {
		i, ok := index[relationship.Status]
		if !ok {
			// Unknown or empty statuses group with NotAvailable so no input
			// relationship is ever dropped.
			i = index[StatusNotAvailable]
		}
		groups[i].Relationships = InsertSorted(groups[i].Relationships, relationship, attentionKey, Ascending)
	}

	return groups
}

// Locate re-runs classification and reports which bucket and position a
// specific relationship landed in. Sentinels ("" and -1) mean the target is
// absent. Used after an edit, since editing may change a relationship's
// status and therefore its bucket.
func Locate(relationships []Relationship, targetID string) (Status, int) {
	for _, group := range Classify(relationships) {
		for i, relationship := range group.Relationships {
			if relationship.ID == targetID {
				return group.Status, i
			}
		}
	}
	return "", -1
}

// flattenGroups collects group members back into one slice, preserving group
// and in-group order.
func flattenGroups(groups []UrgencyGroup) []Relationship {
	var all []Relationship
	for _, group := range groups {
		all = append(all, group.Relationships...)
	}
	return all
}

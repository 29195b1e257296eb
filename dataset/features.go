package dataset

// FeatureSet is the ordered list of feature column names, fixed before any
// fold is processed.
type FeatureSet []string

// SelectFeatures returns columns minus the excluded names, in original order.
func SelectFeatures(columns []string, exclude ...string) FeatureSet {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	features := make(FeatureSet, 0, len(columns))
	for _, name := range columns {
		if !skip[name] {
			features = append(features, name)
		}
	}
	return features
}

package fieldmap

// Merge reconciles freshly auto-detected mappings with the saved set. Saved
// mappings always win on id collisions, so re-running detection never
// overwrites a human's explicit choice. Output order is the saved mappings in
// their original order followed by genuinely new auto-detected mappings in
// discovery order. Merge is idempotent.
func Merge(autoDetected, saved []Mapping) []Mapping {
	merged := make([]Mapping, 0, len(saved)+len(autoDetected))
	seen := make(map[string]struct{}, len(saved))

	for _, m := range saved {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range autoDetected {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	return merged
}

package domain

// PhoneDiff is the minimal change that turns one phone set into another.
type PhoneDiff struct {
	ToAdd    []string
	ToRemove []string
}

// Empty reports whether the diff changes nothing.
func (d PhoneDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// ReconcilePhones computes requested minus current as ToAdd and current minus requested as
// ToRemove. Numbers compare by exact string equality. Output keeps input order without
// duplicates.
func ReconcilePhones(current, requested []string) PhoneDiff {
	currentSet := toSet(current)
	requestedSet := toSet(requested)

	var diff PhoneDiff
	for _, number := range DistinctPhones(requested) {
		if _, ok := currentSet[number]; !ok {
			diff.ToAdd = append(diff.ToAdd, number)
		}
	}
	for _, number := range DistinctPhones(current) {
		if _, ok := requestedSet[number]; !ok {
			diff.ToRemove = append(diff.ToRemove, number)
		}
	}
	return diff
}

// Apply returns current with the diff applied.
func (d PhoneDiff) Apply(current []string) []string {
	removed := toSet(d.ToRemove)
	out := make([]string, 0, len(current)+len(d.ToAdd))
	for _, number := range DistinctPhones(current) {
		if _, ok := removed[number]; !ok {
			out = append(out, number)
		}
	}
	return DistinctPhones(append(out, d.ToAdd...))
}

// DistinctPhones drops repeated numbers, keeping the first occurrence.
func DistinctPhones(numbers []string) []string {
	seen := make(map[string]struct{}, len(numbers))
	out := make([]string, 0, len(numbers))
	for _, number := range numbers {
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}
		out = append(out, number)
	}
	return out
}

func toSet(numbers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(numbers))
	for _, number := range numbers {
		set[number] = struct{}{}
	}
	return set
}

package host

import "sort"

// sortedKeys gives map iteration a stable order so mutation logs are
// reproducible.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

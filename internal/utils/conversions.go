package utils

// ToStringSlice converts a decoded JSON claim into a string slice. Non-string
// elements are skipped; a bare string becomes a one element slice.
func ToStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		stringSlice := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				stringSlice = append(stringSlice, s)
			}
		}
		return stringSlice
	}
	return nil
}

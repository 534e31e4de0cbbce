package selection

// globMatch reports whether name matches a single-component glob pattern
// where "*" matches any run of characters (including none). Column names
// have no path-separator structure, so this is the single-component
// backtracking matcher at the heart of the teacher's config.GlobMatch
// (config/globmatch.go), lifted out from its path-splitting wrapper:
// aretext needs "**" over path components; column-name globs (`vec_*`,
// `*_vec`) never do.
func globMatch(pattern, name string) bool {
	i, j := 0, 0
	bti, btj := 0, 0

	for i < len(pattern) || j < len(name) {
		if i < len(pattern) {
			p := pattern[i]
			if p == '*' {
				bti = i
				btj = j + 1
				i++
				continue
			}
			if j < len(name) && p == name[j] {
				i++
				j++
				continue
			}
		}

		if 0 < btj && btj <= len(name) {
			i = bti
			j = btj
			continue
		}

		return false
	}

	return true
}

package splice

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// IsSpace matches the C locale isspace set.
func IsSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// Upcase maps ASCII lower case to upper case in place.
func Upcase(data []byte) (changed bool) {
	for i, c := range data {
		if isLower(c) {
			data[i] = c - 'a' + 'A'
			changed = true
		}
	}
	return changed
}

// Downcase maps ASCII upper case to lower case in place.
func Downcase(data []byte) (changed bool) {
	for i, c := range data {
		if isUpper(c) {
			data[i] = c - 'A' + 'a'
			changed = true
		}
	}
	return changed
}

// Capitalize upcases the first byte and downcases the rest.
func Capitalize(data []byte) (changed bool) {
	if len(data) == 0 {
		return false
	}
	if isLower(data[0]) {
		data[0] = data[0] - 'a' + 'A'
		changed = true
	}
	return Downcase(data[1:]) || changed
}

// Swapcase inverts the case of every ASCII letter.
func Swapcase(data []byte) (changed bool) {
	for i, c := range data {
		switch {
		case isLower(c):
			data[i] = c - 'a' + 'A'
			changed = true
		case isUpper(c):
			data[i] = c - 'A' + 'a'
			changed = true
		}
	}
	return changed
}

// Reverse reverses data in place.
func Reverse(data []byte) (changed bool) {
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		if data[i] != data[j] {
			changed = true
		}
		data[i], data[j] = data[j], data[i]
	}
	return changed
}

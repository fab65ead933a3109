package format

// allowedTags is the full output vocabulary; a '<' that does not open or
// close one of these is escaped.
var allowedTags = []string{"h2", "h3", "strong", "em", "u", "ul", "li", "p", "br"}

// escapeUnsafeLT replaces every '<' that does not begin an allowed tag with
// &lt;, so residual raw text cannot inject markup.
func escapeUnsafeLT(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			b = append(b, s[i])
			continue
		}
		if allowedTagAt(s, i+1) {
			b = append(b, '<')
		} else {
			b = append(b, "&lt;"...)
		}
	}
	return string(b)
}

// allowedTagAt reports whether s[j:] starts an allowed tag name, optionally
// preceded by '/'. The character after the name must not be a word
// character, so "ul" is not mistaken for "u".
func allowedTagAt(s string, j int) bool {
	if j < len(s) && s[j] == '/' {
		j++
	}
	for _, tag := range allowedTags {
		end := j + len(tag)
		if end > len(s) || s[j:end] != tag {
			continue
		}
		if end == len(s) || !isWordChar(s[end]) {
			return true
		}
	}
	return false
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

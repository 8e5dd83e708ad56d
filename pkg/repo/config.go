package repo

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"grit/pkg/giterr"
)

// Config is a parsed Git configuration file: an INI-style document of
// [section] / [section "subsection"] blocks with key = value lines.
// Lookup keys are "section.key" or "section.subsection.key".
type Config struct {
	// entries maps section -> subsection -> key -> value. The subsection is
	// "" for plain sections. Keys are stored lowercase (Git config keys
	// are case-insensitive); subsection names keep their case.
	entries map[string]map[string]map[string]string
}

// Config loads and parses .git/config. A missing file parses as empty.
func (r *Repository) Config() (*Config, error) {
	data, err := os.ReadFile(filepath.Join(r.gitDir, "config"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{entries: map[string]map[string]map[string]string{}}, nil
		}
		return nil, giterr.Io(err)
	}
	if !utf8.Valid(data) {
		return nil, giterr.InvalidUtf8()
	}
	return ParseConfig(string(data))
}

// ParseConfig parses config text.
func ParseConfig(content string) (*Config, error) {
	cfg := &Config{entries: map[string]map[string]map[string]string{}}

	var section, subsection string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' {
			sec, sub, ok := parseSectionHeader(line)
			if ok {
				section, subsection = sec, sub
			}
			continue
		}

		if section == "" {
			continue
		}
		key, value, ok := parseKeyValue(line)
		if ok {
			cfg.set(section, subsection, key, value)
		}
	}

	return cfg, nil
}

func (c *Config) set(section, subsection, key, value string) {
	section = strings.ToLower(section)
	key = strings.ToLower(key)

	subs, ok := c.entries[section]
	if !ok {
		subs = map[string]map[string]string{}
		c.entries[section] = subs
	}
	keys, ok := subs[subsection]
	if !ok {
		keys = map[string]string{}
		subs[subsection] = keys
	}
	keys[key] = value
}

// Get looks a value up by dotted key: "section.key" or
// "section.subsection.key" (the subsection may itself contain dots).
func (c *Config) Get(key string) (string, error) {
	section, rest, ok := strings.Cut(key, ".")
	if !ok {
		return "", giterr.ConfigNotFound(key)
	}

	var subsection, name string
	if i := strings.LastIndexByte(rest, '.'); i >= 0 {
		subsection, name = rest[:i], rest[i+1:]
	} else {
		subsection, name = "", rest
	}

	if keys, ok := c.entries[strings.ToLower(section)][subsection]; ok {
		if value, ok := keys[strings.ToLower(name)]; ok {
			return value, nil
		}
	}
	return "", giterr.ConfigNotFound(key)
}

// GetBool reads a boolean value: true/yes/on/1 are true, false/no/off/0
// are false. Anything else reports false with ok unset.
func (c *Config) GetBool(key string) (value, ok bool) {
	raw, err := c.Get(key)
	if err != nil {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// parseSectionHeader decodes "[section]" or "[section \"subsection\"]".
func parseSectionHeader(line string) (section, subsection string, ok bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", "", false
	}
	inner := line[1 : len(line)-1]

	if quote := strings.IndexByte(inner, '"'); quote >= 0 {
		section = strings.TrimSpace(inner[:quote])
		rest := inner[quote+1:]
		endQuote := strings.LastIndexByte(rest, '"')
		if endQuote < 0 {
			return "", "", false
		}
		return section, unescapeConfigString(rest[:endQuote]), true
	}

	return strings.TrimSpace(inner), "", true
}

// unescapeConfigString handles the backslash escapes Git allows inside
// quoted subsection names (backslash and double quote).
func unescapeConfigString(s string) string {
	var out strings.Builder
	escaped := false
	for _, c := range s {
		if escaped {
			out.WriteRune(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		out.WriteRune(c)
	}
	return out.String()
}

// parseKeyValue decodes "key = value", stripping inline comments outside
// quotes and unquoting quoted values.
func parseKeyValue(line string) (key, value string, ok bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:eq])
	if key == "" {
		return "", "", false
	}
	return key, parseValue(line[eq+1:]), true
}

func parseValue(s string) string {
	s = strings.TrimSpace(stripInlineComment(strings.TrimSpace(s)))

	if strings.HasPrefix(s, "\"") {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return unescapeConfigString(s[1 : 1+end])
		}
	}
	return unescapeConfigString(s)
}

// stripInlineComment cuts the value at the first # or ; that sits outside
// double quotes.
func stripInlineComment(s string) string {
	inQuotes := false
	escaped := false
	for i, c := range s {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			inQuotes = !inQuotes
		case '#', ';':
			if !inQuotes {
				return strings.TrimRight(s[:i], " \t")
			}
		}
	}
	return s
}

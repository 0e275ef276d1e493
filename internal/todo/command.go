package todo

import (
	"fmt"
	"strconv"
	"strings"
)

// Command prefixes embedded in rendered lines and accepted back from the chat.
const (
	DonePrefix   = "/done_"
	DeletePrefix = "/delete_"
)

// ActionTag renders the inline code identifier of a task line, e.g. "`/done_12`".
func ActionTag(id int64) string {
	return fmt.Sprintf("`%s%d`", DonePrefix, id)
}

// ParseTaskID strips prefix from text and parses the remaining digits as a task id.
// A trailing "@botname" (group chats) is ignored. Anything else is ErrInvalidTaskID.
func ParseTaskID(text, prefix string) (int64, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(strings.ToLower(s), prefix) {
		return 0, fmt.Errorf("%w: missing %s prefix", ErrInvalidTaskID, prefix)
	}
	s = s[len(prefix):]
	if at := strings.IndexByte(s, '@'); at >= 0 {
		s = s[:at]
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty id", ErrInvalidTaskID)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTaskID, s)
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTaskID, s)
	}
	return id, nil
}

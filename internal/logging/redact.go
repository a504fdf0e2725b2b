package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const mask = "******"

var sensitiveKeys = []string{"token", "password", "authorization", "secret"}

// RedactHook masks credential-bearing fields before an entry is written.
type RedactHook struct {
	keys []string
}

// NewRedactHook masks any field whose name contains one of the default
// sensitive words, plus the extra ones given.
func NewRedactHook(extra ...string) *RedactHook {
	keys := append([]string{}, sensitiveKeys...)
	for _, k := range extra {
		keys = append(keys, strings.ToLower(k))
	}
	return &RedactHook{keys: keys}
}

func (h *RedactHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *RedactHook) Fire(e *logrus.Entry) error {
	for k, v := range e.Data {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		if h.sensitive(k) {
			e.Data[k] = mask
		}
	}
	return nil
}

func (h *RedactHook) sensitive(field string) bool {
	field = strings.ToLower(field)
	for _, k := range h.keys {
		if strings.Contains(field, k) {
			return true
		}
	}
	return false
}

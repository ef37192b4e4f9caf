package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// Text forms a stored time.Time comes back in when the driver cannot see
// the column's declared type, as with RETURNING or a remote libsql row.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// timestamp scans a created_at column into t.
type timestamp struct{ t *time.Time }

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case int64:
		*ts.t = time.Unix(v, 0).UTC()
		return nil
	case nil:
		*ts.t = time.Time{}
		return nil
	}
	return fmt.Errorf("scan timestamp: unsupported type %T", src)
}

func (ts timestamp) parse(s string) error {
	// time.Time.String appends the monotonic reading.
	if i := strings.Index(s, " m="); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognized format %q", s)
}

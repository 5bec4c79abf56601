package sqlite

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBusyTimeout = 5 * time.Second

const memoryPath = ":memory:"

// buildDSN turns a file path, ":memory:", a "file:" URI or an ADO style
// "Data Source=path" string into a modernc DSN with the pragmas every pool
// connection needs.
func buildDSN(connection string) string {
	path := dataSource(connection)
	if strings.HasPrefix(path, "file:") {
		return path
	}
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(ON)")
	params.Add("_pragma", "busy_timeout("+itoa(defaultBusyTimeout.Milliseconds())+")")
	if path == memoryPath || path == "" {
		return "file::memory:?cache=shared&" + params.Encode()
	}
	params.Add("_pragma", "journal_mode(WAL)")
	return "file:" + path + "?" + params.Encode()
}

func dataSource(connection string) string {
	s := strings.TrimSpace(connection)
	for _, part := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "data source", "datasource", "filename":
			return strings.TrimSpace(value)
		}
	}
	return s
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

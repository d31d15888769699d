package store

import (
	"fmt"
	"strings"

	"bankmatch/pkg/domain"
)

// Store writes the final ledger somewhere. Rows keep the order they are
// given in.
type Store interface {
	Write([]domain.Transaction) error
}

// FromTarget picks a sink from a "scheme:target" string, e.g.
// [csv:/path/ledger.csv jsonfile:/path/ledger.json es8:http://elasticsearch:9200].
func FromTarget(out string) (Store, error) {
	bits := strings.SplitN(out, ":", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("invalid out target %q, expected [csv:/path/file.csv jsonfile:/path/file.json es8:http://elasticsearch:9200]", out)
	}

	switch bits[0] {
	case "csv":
		return NewCSVFile(bits[1]), nil
	case "jsonfile":
		return NewJSONFile(bits[1]), nil
	case "es8":
		return NewElasticsearchV8(bits[1]), nil
	default:
		return nil, fmt.Errorf("unknown out scheme %q", bits[0])
	}
}

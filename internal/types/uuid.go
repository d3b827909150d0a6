package types

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_SUBSCRIPTION    = "subs"
	UUID_PREFIX_DUNNING_ATTEMPT = "datt"
	UUID_PREFIX_REQUEST         = "req"
)

// GenerateUUID returns a lowercase ULID. ULIDs are lexicographically
// sortable by creation time which keeps index pages warm.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String())
}

// GenerateUUIDWithPrefix returns a ULID prefixed with the entity short code,
// e.g. "datt_01hx...".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator returns a unique service id for a request received at now.
type IDGenerator func(now time.Time) string

// NewServiceID builds ids of the form VOL20240501093000A1B2.
func NewServiceID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:4]
	return "VOL" + now.Format("20060102150405") + suffix
}

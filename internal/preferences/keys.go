package preferences

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"boltdesk/internal/models"
	"boltdesk/internal/themes"
)

// Document keys.
const (
	KeyUserProfile  = "user-profile"
	KeyWebsiteTheme = "website-theme"
	KeyDesignScheme = "design-scheme"
	KeyAPIKeys      = "api-keys"
	KeyUITheme      = "ui-theme"
)

// DefaultProfile is returned for a never-written profile. Missing fields of a
// stored profile are filled from it as well.
func DefaultProfile(timezone string) models.UserProfile {
	return models.UserProfile{
		Notifications: true,
		Language:      "en",
		Timezone:      timezone,
	}
}

// SystemTimezone names the local IANA zone, or UTC when it cannot be told.
func SystemTimezone() string {
	if tz := strings.TrimSpace(os.Getenv("TZ")); tz != "" {
		tz = strings.TrimPrefix(tz, ":")
		if _, err := time.LoadLocation(tz); err == nil && tz != "Local" {
			return tz
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}

func (s *Store) defaultDocument(key string) json.RawMessage {
	var v any
	switch key {
	case KeyUserProfile:
		v = DefaultProfile(s.timezone())
	case KeyWebsiteTheme:
		v = themes.DefaultPresetID
	case KeyDesignScheme:
		v = models.DefaultDesignScheme()
	case KeyAPIKeys:
		v = models.APIKeys{}
	case KeyUITheme:
		v = models.DefaultUITheme
	default:
		return json.RawMessage(`{}`)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

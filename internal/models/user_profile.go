package models

// UserProfile is the persisted "user-profile" document.
type UserProfile struct {
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
	Timezone      string `json:"timezone"`
}

// UserProfilePatch carries the fields a settings surface wants to change.
// Nil fields are left as stored.
type UserProfilePatch struct {
	Notifications *bool   `json:"notifications,omitempty"`
	Language      *string `json:"language,omitempty"`
	Timezone      *string `json:"timezone,omitempty"`
}

// Fields returns the patch as top-level document members.
func (p UserProfilePatch) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if p.Notifications != nil {
		fields["notifications"] = *p.Notifications
	}
	if p.Language != nil {
		fields["language"] = *p.Language
	}
	if p.Timezone != nil {
		fields["timezone"] = *p.Timezone
	}
	return fields
}

// Apply returns profile with the patch laid over it.
func (p UserProfilePatch) Apply(profile UserProfile) UserProfile {
	if p.Notifications != nil {
		profile.Notifications = *p.Notifications
	}
	if p.Language != nil {
		profile.Language = *p.Language
	}
	if p.Timezone != nil {
		profile.Timezone = *p.Timezone
	}
	return profile
}

// Language is one of the locales offered by the settings surface.
type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Languages lists the supported locales in display order.
var Languages = []Language{
	{Code: "en", Label: "English"},
	{Code: "es", Label: "Español"},
	{Code: "fr", Label: "Français"},
	{Code: "de", Label: "Deutsch"},
	{Code: "it", Label: "Italiano"},
	{Code: "pt", Label: "Português"},
	{Code: "ru", Label: "Русский"},
	{Code: "zh", Label: "中文"},
	{Code: "ja", Label: "日本語"},
	{Code: "ko", Label: "한국어"},
}

func IsSupportedLanguage(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

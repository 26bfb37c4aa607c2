package middleware

import (
	"context"

	"github.com/mssola/useragent"
)

// Device is a parsed client descriptor attached to telemetry payloads. The
// raw User-Agent is still forwarded to the provider verbatim.
type Device struct {
	Browser  string
	Version  string
	OS       string
	Mobile   bool
	BotLike  bool
	RawValue string
}

// ParseDevice builds a Device from the User-Agent stored in the context.
func ParseDevice(ctx context.Context) Device {
	raw := GetUserAgent(ctx)
	if raw == "" {
		return Device{}
	}

	parsed := useragent.New(raw)
	browser, version := parsed.Browser()
	return Device{
		Browser:  browser,
		Version:  version,
		OS:       parsed.OS(),
		Mobile:   parsed.Mobile(),
		BotLike:  parsed.Bot(),
		RawValue: raw,
	}
}

// Fields renders the device as a telemetry payload fragment.
func (d Device) Fields() map[string]any {
	if d.RawValue == "" {
		return nil
	}
	return map[string]any{
		"browser": d.Browser,
		"version": d.Version,
		"os":      d.OS,
		"mobile":  d.Mobile,
	}
}

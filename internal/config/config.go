// Package config resolves runtime settings from Viper, which in turn layers
// config file, environment, and flags. Credentials always come from the
// environment (or a .env file loaded at startup), never from the config
// file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/changeline/changeline/pkg/errors"
	"github.com/changeline/changeline/pkg/window"
)

// GraphTokenEnv is the environment variable carrying the admin feed bearer
// token.
const GraphTokenEnv = "CHANGELINE_GRAPH_TOKEN"

// Settings are the resolved options for one report run.
type Settings struct {
	Products    []string
	Clouds      []string
	Months      int
	Since       string
	Until       string
	KeepUndated bool
	ForcedIDs   []string

	Workers int
	Format  string
	Out     string

	RoadmapURL       string
	MessageCenterURL string
	WebFeedURL       string
	MirrorURL        string

	SkipMessageCenter bool
	SkipWebFeed       bool
	SkipEnrich        bool
}

// Load resolves settings from Viper's merged view.
func Load() *Settings {
	return &Settings{
		Products:    splitCSV(viper.GetString("products")),
		Clouds:      splitCSV(viper.GetString("clouds")),
		Months:      viper.GetInt("months"),
		Since:       viper.GetString("since"),
		Until:       viper.GetString("until"),
		KeepUndated: viper.GetBool("keep-undated"),
		ForcedIDs:   splitCSV(viper.GetString("forced-ids")),

		Workers: viper.GetInt("workers"),
		Format:  viper.GetString("format"),
		Out:     viper.GetString("out"),

		RoadmapURL:       viper.GetString("roadmap-url"),
		MessageCenterURL: viper.GetString("messagecenter-url"),
		WebFeedURL:       viper.GetString("webfeed-url"),
		MirrorURL:        viper.GetString("mirror-url"),

		SkipMessageCenter: viper.GetBool("skip-messagecenter"),
		SkipWebFeed:       viper.GetBool("skip-webfeed"),
		SkipEnrich:        viper.GetBool("skip-enrich"),
	}
}

// Window builds the inclusion window from the settings. Since/until must be
// ISO dates when present.
func (s *Settings) Window() (window.Window, error) {
	w := window.Window{
		LookbackMonths: s.Months,
		KeepUndated:    s.KeepUndated,
	}

	if s.Since != "" {
		t, err := time.Parse("2006-01-02", s.Since)
		if err != nil {
			return w, errors.NewValidationError("since", s.Since, "expected YYYY-MM-DD")
		}
		w.Since = &t
	}
	if s.Until != "" {
		t, err := time.Parse("2006-01-02", s.Until)
		if err != nil {
			return w, errors.NewValidationError("until", s.Until, "expected YYYY-MM-DD")
		}
		w.Until = &t
	}
	return w, nil
}

// GraphToken returns the admin feed bearer token, checking the OS
// environment before Viper so a .env value is never shadowed by an empty
// config entry.
func GraphToken() string {
	if v := os.Getenv(GraphTokenEnv); v != "" {
		return v
	}
	return viper.GetString(GraphTokenEnv)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

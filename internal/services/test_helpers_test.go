package services_test

import (
	"github.com/drsite/drsite-web/config"
)

func testConfig(mode string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AppEnv: "test"},
		Site:   config.SiteConfig{Lang: "nl"},
		Submission: config.SubmissionConfig{
			Mode: mode,
		},
	}
}

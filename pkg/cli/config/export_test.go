package config

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{
		dsn: dsn,
		env: env,
	}
}

// NewToolsForTest creates a Tools config for testing purposes
func NewToolsForTest(weatherBaseURL, weatherAPIKey, sizeTablePath string) *Tools {
	return &Tools{
		weatherBaseURL: weatherBaseURL,
		weatherAPIKey:  weatherAPIKey,
		sizeTablePath:  sizeTablePath,
	}
}

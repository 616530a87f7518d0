package testutils

// Various constant defined for to obtain dummy data for tests
const (
	ApplicationConfigPath = "/testutils/testdata/sample_config.json" // ApplicationConfigPath points to dummy config file in json format for ExtractorConfig
	CoverageFixtureDir    = "/testutils/testdata/coverage"           // CoverageFixtureDir holds sample coverage reports
)

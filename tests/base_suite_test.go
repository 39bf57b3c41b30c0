package tests

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ExternalDependenciesSuite loads credentials for suites that call real
// provider APIs. SETTINGS_FILE overrides the default $HOME/.env.
type ExternalDependenciesSuite struct {
	suite.Suite
	settingsFile string
}

func (s *ExternalDependenciesSuite) SetupSuite() {
	logging.Configure(os.Getenv("LOG_LEVEL"), "text", os.Stderr)

	settingsFromEnv := strings.TrimSpace(os.Getenv("SETTINGS_FILE"))
	settingsFile := settingsFromEnv
	if settingsFile == "" {
		homeDir, err := os.UserHomeDir()
		require.NoError(s.T(), err)
		settingsFile = filepath.Join(homeDir, ".env")
	}
	s.settingsFile = settingsFile

	if _, err := os.Stat(settingsFile); err != nil {
		if errors.Is(err, os.ErrNotExist) && settingsFromEnv == "" {
			return
		}
		require.NoError(s.T(), err)
		return
	}
	require.NoError(s.T(), godotenv.Overload(settingsFile))
}

func (s *ExternalDependenciesSuite) SettingsFile() string {
	return s.settingsFile
}

// geminiKey returns the first Gemini key found under the names the server
// accepts, or skips the suite.
func (s *ExternalDependenciesSuite) geminiKey() string {
	for _, name := range []string{"GEMINI_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	s.T().Skip("GEMINI_KEY is not set; skipping external dependency integration test")
	return ""
}

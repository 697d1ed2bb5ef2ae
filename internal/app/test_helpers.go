package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing, with debug
// logs captured in the returned buffer.
func SetupAppTest(t *testing.T, appConfig *Config, loaders []config.Loader, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	appConfig.LogFormat = "text"
	if appConfig.Listen == "" {
		appConfig.Listen = "127.0.0.1:0"
	}
	testApp := NewApp(logBuffer, appConfig, loaders, modules...)

	t.Cleanup(func() {
		if os.Getenv("GRAPHUA_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}

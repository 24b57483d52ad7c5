// ABOUTME: Shared helpers for command tests
// ABOUTME: Points the commands at a fake marketplace with a file token store in a temp dir

package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"

	"github.com/Modhak129/WEB-freelance/internal/config"
	"github.com/Modhak129/WEB-freelance/internal/fakeapi"
)

// setupCLI starts a fake server and returns it with the config directory in use
func setupCLI(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	srv := fakeapi.New()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	old := v
	v = viper.New()
	v.Set(config.KeyAPIURL, ts.URL+fakeapi.Prefix)
	v.Set(config.KeyConfigDir, dir)
	v.Set(config.KeyTokenStore, "file")
	v.Set(config.KeyRateLimit, 0)
	t.Cleanup(func() {
		v = old
		jsonOutput = false
	})
	return srv, dir
}

// loginAs logs in through the login command so later commands find the stored token
func loginAs(t *testing.T, email string) {
	t.Helper()
	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, email, "pw"); code != 0 {
		t.Fatalf("login as %s failed (%d): %s", email, code, buf.String())
	}
}

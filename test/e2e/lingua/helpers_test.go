package lingua_test

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helpers for the lingua end-to-end tests: the image
 * is built once, and each test runs its own container.
 */

const (
	testImageName = "lingua-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "admin"
	adminPassword  = "Admin123!"
	userPassword   = "Learner123!"
)

// relaxedLimits lift the rate limits so that tests can make rapid requests.
var relaxedLimits = map[string]string{
	"RATELIMIT_AUTH_REQUESTS":  "1000",
	"RATELIMIT_AUTH_BURST":     "1000",
	"RATELIMIT_WRITE_REQUESTS": "1000",
	"RATELIMIT_WRITE_BURST":    "1000",
}

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building lingua Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up lingua Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/lingua/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupContainer starts lingua with relaxed rate limits plus env and
// returns its base URL. The container is terminated when the test ends.
func setupContainer(t *testing.T, env map[string]string) string {
	t.Helper()

	all := map[string]string{
		"BOOTSTRAP_TOKEN": bootstrapToken,
		"LINGUA_ISSUER":   "lingua-e2e",
		"LINGUA_NUM_KEYS": "1",
		"ENV":             "test",
		"LOG_LEVEL":       "info",
		"LOG_FORMAT":      "json",
	}
	maps.Copy(all, relaxedLimits)
	maps.Copy(all, env)

	return startContainer(t, all)
}

// setupContainerWithDefaultRateLimits starts lingua with the production
// rate limits, for the tests that check limiting itself.
func setupContainerWithDefaultRateLimits(t *testing.T) string {
	t.Helper()

	return startContainer(t, map[string]string{
		"BOOTSTRAP_TOKEN": bootstrapToken,
		"LINGUA_NUM_KEYS": "1",
		"ENV":             "test",
	})
}

func startContainer(t *testing.T, env map[string]string) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// waitReady polls readyz until auth has initialised.
func waitReady(t *testing.T, client *linguasdk.Client) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := client.Readiness(t.Context())
		return err == nil
	}, 30*time.Second, 100*time.Millisecond, "service never became ready")
}

// bootstrapAdmin creates the first admin and returns a signed-in client.
func bootstrapAdmin(t *testing.T, client *linguasdk.Client) *linguasdk.Client {
	t.Helper()
	ctx := t.Context()

	_, err := client.Bootstrap(ctx, bootstrapToken, linguasdk.BootstrapRequest{
		Username: adminUsername,
		Password: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")

	admin, _, err := client.Login(ctx, linguasdk.LoginRequest{Username: adminUsername, Password: adminPassword})
	require.NoError(t, err, "Admin login should succeed")
	return admin
}

// registerUser creates a learner and returns a signed-in client.
func registerUser(t *testing.T, client *linguasdk.Client, username string) (*linguasdk.Client, *linguasdk.UserResponse) {
	t.Helper()
	ctx := t.Context()

	u, err := client.Register(ctx, linguasdk.RegisterRequest{Username: username, Password: userPassword, Level: "B1"})
	require.NoError(t, err, "Register should succeed")

	c, _, err := client.Login(ctx, linguasdk.LoginRequest{Username: username, Password: userPassword})
	require.NoError(t, err, "Login should succeed")
	return c, u
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *linguasdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

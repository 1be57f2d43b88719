package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"mediascribe/internal/config"
	"mediascribe/internal/deps"
	"mediascribe/internal/pipeline"
)

const llmCheckTimeout = 30 * time.Second

// CheckLLM verifies that the LLM API is reachable and the key is valid. It
// makes a single request with a 30-second timeout.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if !cfg.HasCredential() {
		return Result{Name: name, Detail: "API key missing"}
	}
	client, err := pipeline.NewLLMClient(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", client.Model())}
}

// CheckCredential reports whether an LLM key is configured without
// contacting the API.
func CheckCredential(cfg *config.Config) Result {
	const name = "LLM credential"
	if cfg.GetLLM().HasCredential() {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s key present", cfg.LLM.Provider)}
	}
	return Result{Name: name, Detail: fmt.Sprintf("missing; set %s to enable summaries and TODO lists", cfg.CredentialEnvHint())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSourceDirectory verifies read access to an external source. A missing
// source passes: the copy stage simply skips it.
func CheckSourceDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not found; stage skips)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckSystemDeps evaluates the external programs the configured stages
// need. Both the status command and the run preflight use it.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	results := []deps.Status{deps.CheckFFmpeg(ctx, cfg.FFmpegBinary())}
	if cfg.Transcription.Engine == config.EngineWhisper {
		results = append(results, deps.CheckBinaries([]deps.Requirement{{
			Name:        "Whisper",
			Command:     cfg.Transcription.Command,
			Description: "Required for transcription",
		}})...)
	} else {
		status := deps.Status{
			Name:        "Speech API",
			Command:     cfg.Transcription.APIBaseURL,
			Description: "Required for transcription",
			Available:   cfg.Transcription.APIKey != "",
		}
		if !status.Available {
			status.Detail = "API key missing; set transcription.api_key or OPENAI_API_KEY"
		}
		results = append(results, status)
	}
	return results
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}

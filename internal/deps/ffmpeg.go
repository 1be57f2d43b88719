package deps

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// CheckFFmpeg resolves the ffmpeg binary used for audio extraction and, when
// found, records its version line as the detail.
func CheckFFmpeg(ctx context.Context, command string) Status {
	command = strings.TrimSpace(command)
	if command == "" {
		command = "ffmpeg"
	}
	result := CheckBinaries([]Requirement{{
		Name:        "FFmpeg",
		Command:     command,
		Description: "Required for extracting audio from videos",
	}})[0]
	if !result.Available {
		return result
	}
	if version := toolVersion(ctx, result.Command, "-version"); version != "" {
		result.Detail = version
	}
	return result
}

// toolVersion runs the binary with a version flag and returns the first
// output line, or "" when the call fails.
func toolVersion(ctx context.Context, binary string, args ...string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

// Package delineate orchestrates watershed delineation runs: it drives the
// external delineation routine, loads the resulting container layers with
// per-layer fallback, and installs finished results on the session state.
package delineate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mbetancur/basinview/internal/logger"
)

// Delineator computes the watershed draining to an outlet point and returns
// the filesystem path of the spatial container holding the result layers.
// Implementations may take seconds to minutes.
type Delineator interface {
	Delineate(ctx context.Context, lat, lon float64, watershedID string, knownAreaKm2 *float64) (string, error)
}

// ExecDelineator shells out to an external delineation command. The command
// receives the outlet and parameters as flags and prints the output container
// path as the last line of stdout.
type ExecDelineator struct {
	// Command is the program and any leading fixed arguments.
	Command []string
	// Timeout bounds a single invocation. Zero means no limit.
	Timeout time.Duration
}

func (d *ExecDelineator) Delineate(ctx context.Context, lat, lon float64, watershedID string, knownAreaKm2 *float64) (string, error) {
	if len(d.Command) == 0 {
		return "", fmt.Errorf("delineator command not configured")
	}
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	args := append([]string{}, d.Command[1:]...)
	args = append(args,
		"--lat", strconv.FormatFloat(lat, 'f', -1, 64),
		"--lon", strconv.FormatFloat(lon, 'f', -1, 64),
		"--id", watershedID,
	)
	if knownAreaKm2 != nil {
		args = append(args, "--area", strconv.FormatFloat(*knownAreaKm2, 'f', -1, 64))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Command[0], args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Infof("[delineate] running %s lat=%v lon=%v id=%s", d.Command[0], lat, lon, watershedID)
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("delineator timed out after %s: %w", time.Since(start).Round(time.Second), ctx.Err())
		}
		return "", fmt.Errorf("delineator failed: %w: %s", err, lastLine(stderr.String()))
	}
	logger.Infof("[delineate] finished in %s", time.Since(start).Round(time.Millisecond))

	path := lastLine(stdout.String())
	if path == "" {
		return "", fmt.Errorf("delineator produced no output path")
	}
	return path, nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

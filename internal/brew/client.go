package brew

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBinary is used when no explicit brew path is configured.
const DefaultBinary = "brew"

// waitDelay bounds how long a finished or canceled brew call may keep its
// output pipes open through orphaned children.
const waitDelay = 2 * time.Second

// Client invokes the brew binary. Every call is blocking and converts
// process failures into a *ToolError; nothing escapes as a panic.
type Client struct {
	logger  *slog.Logger
	output  io.Writer
	binary  string
	timeout time.Duration
}

// New creates a Client for the given brew binary path.
// An empty path falls back to DefaultBinary looked up in PATH.
func New(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}

	return &Client{
		binary: binary,
		logger: slog.Default(),
	}
}

// WithLogger returns a new Client that logs to logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c2 := *c
	c2.logger = logger

	return &c2
}

// WithTimeout returns a new Client that bounds each brew invocation by d.
// Zero disables the limit.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c2 := *c
	c2.timeout = d

	return &c2
}

// WithOutput returns a new Client that mirrors install and uninstall
// output to w in addition to capturing it.
func (c *Client) WithOutput(w io.Writer) *Client {
	c2 := *c
	c2.output = w

	return &c2
}

// Binary returns the brew executable this client runs.
func (c *Client) Binary() string {
	return c.binary
}

// ListInstalled queries casks and formulae independently and concurrently.
// A failure in one category yields an empty list for that category only.
func (c *Client) ListInstalled(ctx context.Context) Installed {
	var (
		installed Installed
		g         errgroup.Group
	)

	// Each goroutine writes its own field.
	g.Go(func() error {
		installed.Casks = c.listCategory(ctx, OpListCasks)
		return nil
	})

	g.Go(func() error {
		installed.Formulae = c.listCategory(ctx, OpListFormulae)
		return nil
	})

	_ = g.Wait() //nolint:errcheck // listCategory never returns an error

	return installed
}

func (c *Client) listCategory(ctx context.Context, op Op) []string {
	stdout, _, err := c.run(ctx, op, "", false)
	if err != nil {
		c.logger.Warn("listing installed packages failed",
			slog.String("op", string(op)),
			slog.String("error", err.Error()))
		return []string{}
	}

	return parseLines(stdout)
}

// Search returns brew's matches for query in the order brew printed them.
// It returns an empty slice both on failure and when nothing matches.
func (c *Client) Search(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}
	}

	stdout, _, err := c.run(ctx, OpSearch, query, false)
	if err != nil {
		c.logger.Debug("search returned no results",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return []string{}
	}

	return parseLines(stdout)
}

// Install installs a single package. The failure detail is the package name.
func (c *Client) Install(ctx context.Context, name string) error {
	_, _, err := c.run(ctx, OpInstall, name, true)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			te.Detail = name
		}

		return err
	}

	return nil
}

// Uninstall force-removes a single package. The failure detail is brew's
// trimmed stderr, or the error text when brew printed nothing.
func (c *Client) Uninstall(ctx context.Context, name string) error {
	_, stderr, err := c.run(ctx, OpUninstall, name, true)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			te.Detail = strings.TrimSpace(stderr)
			if te.Detail == "" {
				te.Detail = te.Err.Error()
			}
		}

		return err
	}

	return nil
}

// run executes one brew invocation and returns captured stdout and stderr.
// mirror copies the output to c.output when one is configured.
func (c *Client) run(ctx context.Context, op Op, value string, mirror bool) (string, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := expandArgs(op, value)
	cmd := exec.CommandContext(ctx, c.binary, args...) //nolint:gosec // args from trusted lookup table
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	if mirror && c.output != nil {
		cmd.Stdout = io.MultiWriter(&stdout, c.output)
		cmd.Stderr = io.MultiWriter(&stderr, c.output)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	c.logger.Debug("running brew",
		slog.String("op", string(op)),
		slog.String("binary", c.binary),
		slog.String("args", strings.Join(args, " ")))

	start := time.Now()
	err := cmd.Run()

	c.logger.Debug("brew finished",
		slog.String("op", string(op)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("ok", err == nil))

	if err == nil {
		return stdout.String(), stderr.String(), nil
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
		return stdout.String(), stderr.String(), NewToolError(op, value, "", -1, err)
	case errors.As(err, &exitErr):
		err = fmt.Errorf("exit status %d", exitErr.ExitCode())
		return stdout.String(), stderr.String(), NewToolError(op, value, "", exitErr.ExitCode(), err)
	default:
		err = fmt.Errorf("%w: %w", ErrLaunchFailed, err)
		return stdout.String(), stderr.String(), NewToolError(op, value, "", -1, err)
	}
}

// parseLines splits brew output into identifiers, dropping blank lines and
// "==>" section headers.
func parseLines(output string) []string {
	results := []string{}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "==>") {
			continue
		}

		results = append(results, line)
	}

	return results
}

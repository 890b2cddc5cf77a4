package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wondernetwork/wiu-go/pkg/client"
)

const pollInterval = time.Second

// ── submit ───────────────────────────────────────────────────────────────────

var (
	submitServers []string
	submitTests   []string
	submitOptions []string
	submitRaw     string
	submitWait    time.Duration
)

var submitCmd = &cobra.Command{
	Use:   "submit <uri>",
	Short: "Submit a test job",
	Long: `submit queues tests against a URL from one or more edge servers and
prints the job ID.

  wiu submit google.com --server denver --server london --test ping --test dig

Options are passed as key=value; values are parsed as JSON when possible:

  wiu submit example.com --server denver --test http --option timeout=60

A request already encoded as JSON can be read from a file, or stdin with -:

  echo '{"uri": "google.com", "sources": ["denver"], "tests": ["dig"]}' | wiu submit --raw -

With --wait the job is polled once per second until it finishes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringSliceVar(&submitServers, "server", nil, "Edge server to test from (repeatable)")
	submitCmd.Flags().StringSliceVar(&submitTests, "test", nil, "Test type: dig, host, ping, http, fast, edge, trace, shot, nametime (repeatable)")
	submitCmd.Flags().StringArrayVar(&submitOptions, "option", nil, "Job option as key=value (repeatable)")
	submitCmd.Flags().StringVar(&submitRaw, "raw", "", "Submit a raw JSON request from a file, or - for stdin")
	submitCmd.Flags().DurationVar(&submitWait, "wait", 0, "Wait up to this long for the job to finish")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if submitRaw == "" && len(args) != 1 {
		return errors.New("submit needs a <uri> argument or --raw")
	}
	if submitRaw != "" && len(args) != 0 {
		return errors.New("<uri> and --raw are mutually exclusive")
	}

	ctx := cmd.Context()
	api, closeAPI, err := newAPI(ctx, loadSettings(), logger)
	if err != nil {
		return err
	}
	defer closeAPI()

	var jobID string
	if submitRaw != "" {
		raw, err := readRaw(submitRaw, cmd.InOrStdin())
		if err != nil {
			return err
		}
		jobID, err = api.SubmitRaw(ctx, raw)
		if err != nil {
			return fmt.Errorf("submit job: %w", err)
		}
	} else {
		options, err := parseOptions(submitOptions)
		if err != nil {
			return err
		}
		jobID, err = api.Submit(ctx, args[0], submitServers, submitTests, options)
		if err != nil {
			return fmt.Errorf("submit job: %w", err)
		}
	}

	logger.Info("job submitted", zap.String("job_id", jobID))
	if submitWait <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), jobID)
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Job %s submitted, waiting up to %s\n", jobID, submitWait)
	job, err := waitForJob(ctx, api, jobID, submitWait, pollInterval)
	if job != nil {
		if werr := writeJSON(cmd.OutOrStdout(), job); werr != nil {
			return werr
		}
	}
	return err
}

// parseOptions turns key=value pairs into a job options map. Values that
// parse as JSON keep their JSON type; anything else is a string.
func parseOptions(pairs []string) (map[string]any, error) {
	options := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q: want key=value", pair)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			options[key] = decoded
		} else {
			options[key] = value
		}
	}
	return options, nil
}

func readRaw(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(stdin)
		return raw, errors.Wrap(err, "read raw request from stdin")
	}
	raw, err := os.ReadFile(path)
	return raw, errors.Wrapf(err, "read raw request %s", path)
}

// ── retrieve ─────────────────────────────────────────────────────────────────

var retrieveWait time.Duration

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <jobID>",
	Short: "Retrieve the results of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, closeAPI, err := newAPI(ctx, loadSettings(), logger)
		if err != nil {
			return err
		}
		defer closeAPI()

		var job client.JobResult
		if retrieveWait > 0 {
			job, err = waitForJob(ctx, api, args[0], retrieveWait, pollInterval)
		} else {
			job, err = api.Retrieve(ctx, args[0])
		}
		if job != nil {
			if werr := writeJSON(cmd.OutOrStdout(), job); werr != nil {
				return werr
			}
		}
		if err != nil {
			return fmt.Errorf("retrieve job %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	retrieveCmd.Flags().DurationVar(&retrieveWait, "wait", 0, "Poll until the job finishes, up to this long")
}

// waitForJob retrieves id every interval until it is no longer in progress
// or maxWait elapses. On timeout the last in-progress result is returned
// along with an error.
func waitForJob(ctx context.Context, api client.API, id string, maxWait, interval time.Duration) (client.JobResult, error) {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := api.Retrieve(ctx, id)
		if err != nil {
			return nil, err
		}
		if !job.InProgress() {
			return job, nil
		}
		logger.Debug("job in progress", zap.String("job_id", id))

		select {
		case <-ctx.Done():
			return job, fmt.Errorf("job %s still in progress after %s", id, maxWait)
		case <-ticker.C:
		}
	}
}

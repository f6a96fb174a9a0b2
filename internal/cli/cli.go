// Package cli implements the flowctl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/viant/flowcore"
	"github.com/viant/flowcore/internal/xjson"
	"github.com/viant/flowcore/model/flow"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/service/dao"
)

// Environment variables overriding the configuration.
const (
	EnvStore    = "FLOWCORE_STORE"
	EnvStoreURL = "FLOWCORE_STORE_URL"
	EnvLogLevel = "FLOWCORE_LOG_LEVEL"
)

type options struct {
	configURL string
	envFile   string
	store     string
	storeURL  string
	logLevel  string
}

// NewRootCommand returns the flowctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "flowctl",
		Short:         "Validate, plan and run flow definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(opts.envFile)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configURL, "config", "", "configuration YAML URL")
	flags.StringVar(&opts.envFile, "env", ".env", "dotenv file loaded when present")
	flags.StringVar(&opts.store, "store", "", "store kind: memory, fs, badger or postgres")
	flags.StringVar(&opts.storeURL, "store-url", "", "store base URL, directory or DSN")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level")
	setupCommands(rootCmd, opts)
	return rootCmd
}

// setupCommands registers the subcommands.
func setupCommands(rootCmd *cobra.Command, opts *options) {
	validateCmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Run structural and publish validation of a definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := newService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer srv.Close()
			return validate(cmd.Context(), srv, args[0], cmd.OutOrStdout())
		},
	}

	planCmd := &cobra.Command{
		Use:   "plan FILE",
		Short: "Print the snapshot document of a definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := newService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer srv.Close()
			return plan(cmd.Context(), srv, args[0], cmd.OutOrStdout())
		},
	}

	var input string
	var timeout time.Duration
	runCmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Publish a definition and execute it with the built-in executors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := newService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer srv.Close()
			return execute(cmd.Context(), srv, args[0], input, timeout, cmd.OutOrStdout())
		},
	}
	runCmd.Flags().StringVar(&input, "input", "{}", "run input as a JSON object")
	runCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "run timeout")

	rootCmd.AddCommand(validateCmd, planCmd, runCmd)
}

func loadEnv(envFile string) error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %v: %w", envFile, err)
	}
	return nil
}

func newService(ctx context.Context, opts *options) (*flowcore.Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	config := flowcore.DefaultConfig()
	if opts.configURL != "" {
		loaded, err := flowcore.LoadConfig(ctx, opts.configURL)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	config.Store.Kind = firstNonEmpty(opts.store, os.Getenv(EnvStore), config.Store.Kind)
	config.Store.URL = firstNonEmpty(opts.storeURL, os.Getenv(EnvStoreURL), config.Store.URL)
	config.Log.Level = firstNonEmpty(opts.logLevel, os.Getenv(EnvLogLevel), config.Log.Level)
	return flowcore.NewWithContext(ctx, flowcore.WithConfig(config))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func load(ctx context.Context, srv *flowcore.Service, location string) (*flow.Definition, error) {
	if abs, err := filepath.Abs(location); err == nil {
		if _, statErr := os.Stat(abs); statErr == nil {
			location = abs
		}
	}
	return srv.LoadDefinition(ctx, location)
}

func validate(ctx context.Context, srv *flowcore.Service, location string, out io.Writer) error {
	def, err := load(ctx, srv, location)
	if err != nil {
		return err
	}
	if err = srv.Validator().ValidateForPublish(def.Graph); err != nil {
		return err
	}
	fmt.Fprintf(out, "definition %q is valid: %d nodes, %d edges\n", def.Name, len(def.Graph.Nodes), len(def.Graph.Edges))
	return nil
}

func plan(ctx context.Context, srv *flowcore.Service, location string, out io.Writer) error {
	def, err := load(ctx, srv, location)
	if err != nil {
		return err
	}
	if err = srv.Validator().ValidateForPublish(def.Graph); err != nil {
		return err
	}
	doc, err := srv.Builder().Document(def, def.NextVersion())
	if err != nil {
		return err
	}
	data, err := xjson.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func execute(ctx context.Context, srv *flowcore.Service, location, input string, timeout time.Duration, out io.Writer) error {
	def, err := load(ctx, srv, location)
	if err != nil {
		return err
	}
	var runInput map[string]interface{}
	if err = xjson.Unmarshal([]byte(input), &runInput); err != nil {
		return fmt.Errorf("invalid --input: %w", err)
	}
	if err = publish(ctx, srv, def); err != nil {
		return err
	}
	runtime := srv.Runtime()
	if err = runtime.Start(ctx); err != nil {
		return err
	}
	defer runtime.Shutdown(ctx)
	result, runErr := runtime.Execute(ctx, def.ID, runInput, flowcore.WithTimeout(timeout))
	if result != nil {
		data, err := xjson.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		if result.Status != run.StatusSuccess && runErr == nil {
			runErr = fmt.Errorf("run %v ended %v", result.RunID, result.Status)
		}
	}
	return runErr
}

// publish stores def as the next version of the definition with the same
// id, creating it when missing.
func publish(ctx context.Context, srv *flowcore.Service, def *flow.Definition) error {
	if def.ID == "" {
		def.ID = def.Name
	}
	existing, err := srv.GetDefinition(ctx, def.ID)
	switch {
	case errors.Is(err, dao.ErrNotFound):
		if _, err = srv.CreateDefinition(ctx, def); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if !existing.IsDraft() {
			if _, err = srv.CreateNewVersion(ctx, def.ID); err != nil {
				return err
			}
		}
		if _, err = srv.UpdateDefinition(ctx, def.ID, def.Graph); err != nil {
			return err
		}
	}
	_, err = srv.Publish(ctx, def.ID)
	return err
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/contactsync/internal/services"
	"github.com/desertthunder/contactsync/internal/shared"
	"github.com/desertthunder/contactsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	store      services.ContactStore
	engine     *tasks.SyncEngine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
	// fixedStore is set when the store was supplied by the caller and must survive a config reload.
	fixedStore bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Store      services.ContactStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	r := &Runner{
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		store:      opts.Store,
		fixedStore: opts.Store != nil,
	}

	config := opts.Config
	if config == nil {
		config = shared.DefaultConfig()
	}
	r.configure(config)
	return r
}

// configure installs config and rebuilds the store client and engine from it.
func (r *Runner) configure(config *shared.Config) {
	r.config = config

	if ll, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(r.logger, ll)
	}

	if !r.fixedStore {
		client := r.httpClient
		if client == nil {
			client = &http.Client{Timeout: config.Remote.Timeout()}
		}
		r.store = services.NewHTTPContactStore(services.StoreOpts{
			BaseURL:           config.Remote.BaseURL,
			HTTPClient:        client,
			RequestsPerSecond: config.Remote.RequestsPerSecond,
			Logger:            shared.WithLogger(r.logger, "component", "store"),
		})
	}

	r.engine = tasks.NewSyncEngine(r.store, nil, tasks.Options{
		ReloadAfterEdit: config.Sync.ReloadAfterEdit,
		Logger:          shared.WithLogger(r.logger, "component", "sync"),
	})
}

// prepare loads the config file named by --config when it exists.
//
// A missing file is only an error when the path was given explicitly.
func (r *Runner) prepare(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if path != defaultConfigPath {
			return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		r.logger.Debug("no config file, using defaults", "path", path)
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}
	r.configure(config)
	r.logger.Debug("loaded config", "path", path)
	return nil
}

// SetLogger replaces the logger used by the runner, the store client and the engine.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.configure(r.config)
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "contactsync",
		Usage:    "Keep a local contact list in sync with a remote contact store",
		Version:  "0.1.0",
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		listCommand, addCommand, editCommand, deleteCommand, searchCommand,
		reorderCommand, moveCommand, exportCommand, tuiCommand, serveCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// confirm asks a y/N question on the runner's input. Anything but y or yes declines.
func (r *Runner) confirm(question string) bool {
	r.writePlain("%s [y/N]: ", question)
	answer, err := r.input.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

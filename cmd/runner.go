package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/desertthunder/tdx/internal/tasks"
	"github.com/desertthunder/tdx/internal/ui"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// ServiceFactory builds the remote service for an account token.
type ServiceFactory func(ctx context.Context, token string) (services.Service, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	newService ServiceFactory
	lookupEnv  func(string) (string, bool)
	envFile    string
	// interactive selects the progress bar over plain progress lines.
	interactive bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	NewService ServiceFactory              // default: a TodoistService built from the loaded config
	LookupEnv  func(string) (string, bool) // default: os.LookupEnv
	EnvFile    string                      // default: .env
	// Interactive renders progress as a bar. Set it when Output is a terminal.
	Interactive bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}

	r := &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		newService: opts.NewService,
		lookupEnv:  opts.LookupEnv,
		envFile:    opts.EnvFile,

		interactive: opts.Interactive,
	}
	if r.newService == nil {
		r.newService = r.todoistService
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		fetchCommand, tasksCommand, groupCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) todoistService(ctx context.Context, token string) (services.Service, error) {
	return services.NewTodoistService(ctx, token, services.TodoistOpts{
		BaseURL:    r.config.API.BaseURL,
		PageLimit:  r.config.API.PageLimit,
		Timeout:    r.config.Timeout(),
		HTTPClient: r.httpClient,
	})
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Load builds the configuration once, before any command runs.
//
// The TOML file is optional. Values from the process environment win over the .env file, and both win over the file.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
		// debug logs would tear the bar apart
		r.interactive = false
	}

	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return ctx, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		r.config = config
		r.logger.Debug("loaded config", "path", configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", configPath)
	}

	dotenv, err := godotenv.Read(r.envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ctx, fmt.Errorf("failed to read %s: %w", r.envFile, err)
	}

	r.config.ApplyEnv(func(key string) (string, bool) {
		if v, ok := r.lookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	return ctx, r.config.Validate()
}

// say writes to the output and logs a failed write instead of failing the export that produced it.
func (r *Runner) say(format string, args ...any) {
	if err := r.writePlain(format, args...); err != nil {
		r.logger.Warn("could not write to output", "error", err)
	}
}

// progress displays updates until the returned channel is closed and drained: a progress bar
// on a terminal, one line per update otherwise. cancel runs if the user stops the bar.
func (r *Runner) progress(title string, cancel context.CancelFunc) (chan tasks.ProgressUpdate, <-chan struct{}) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if r.interactive {
			err := ui.RunProgress(progressCh, ui.ProgressOpts{Title: title, Cancel: cancel, Output: r.output})
			if err != nil {
				r.logger.Warn("progress display failed", "error", err)
			}
			return
		}

		r.say("%s\n", title)
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase)
			r.printProgress(update)
		}
	}()
	return progressCh, done
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchCompleted, tasks.FetchTaskByID, tasks.FetchArchivedProjects:
		if update.Step == 1 {
			r.say("\n📥 %s\n", update.Message)
		} else {
			r.say("   %s\n", update.Message)
		}
	case tasks.FetchActiveTasks, tasks.FetchActiveProjects:
		r.say("\n📥 %s\n", update.Message)
	case tasks.GroupRecords:
		r.say("\n🔑 %s\n", update.Message)
	case tasks.WriteExport:
		r.say("📝 %s\n", update.Message)
	}
}

func (r *Runner) mode() (formatter.Mode, error) {
	return formatter.ParseMode(r.config.Output.Mode)
}

func (r *Runner) plan(account models.Account) (tasks.AccountPlan, error) {
	loc, err := r.config.Location()
	if err != nil {
		return tasks.AccountPlan{}, err
	}
	mode, err := r.mode()
	if err != nil {
		return tasks.AccountPlan{}, err
	}

	windows := tasks.QuarterlyWindows(tasks.WindowOpts{
		StartYear: r.config.Range.StartYear,
		EndYear:   r.config.Range.EndYear,
		EndMonth:  time.Month(r.config.Range.EndMonth),
		Location:  loc,
	})

	return tasks.AccountPlan{
		Account:            account,
		Windows:            windows,
		ArchivedProjectIDs: r.config.Account(account).ArchivedProjectIDs,
		OutputDir:          r.config.Output.Directory,
		Prefix:             r.config.Output.Prefix,
		Extension:          r.config.Extension(),
		Mode:               mode,
	}, nil
}

// engine resolves the account's credential and builds an engine around its service.
func (r *Runner) engine(ctx context.Context, account models.Account) (*tasks.ExportEngine, error) {
	token, err := r.config.Credential(account)
	if err != nil {
		return nil, err
	}

	svc, err := r.newService(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	mode, err := r.mode()
	if err != nil {
		return nil, err
	}

	return tasks.NewExportEngine(svc, tasks.EngineOpts{Mode: mode, Logger: r.logger}), nil
}

func (r *Runner) runAccount(ctx context.Context, account models.Account) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine, err := r.engine(ctx, account)
	if err != nil {
		return err
	}

	plan, err := r.plan(account)
	if err != nil {
		return err
	}

	progressCh, done := r.progress(fmt.Sprintf("Exporting %s account", account), cancel)
	report, err := engine.RunAccount(ctx, progressCh, plan)
	close(progressCh)
	<-done

	if report != nil {
		r.say("\n%s\n\n", ui.RenderAccountReport(report))
	}
	return err
}

// runAccounts exports accounts in order and stops at the first failure or once ctx is done.
func (r *Runner) runAccounts(ctx context.Context, accounts []models.Account) error {
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export interrupted before %s account: %w", account, err)
		}
		if err := r.runAccount(ctx, account); err != nil {
			return fmt.Errorf("%s account: %w", account, err)
		}
	}
	return nil
}

// FetchAll exports every category for the personal account, then the work account.
func (r *Runner) FetchAll(ctx context.Context, cmd *cli.Command) error {
	return r.runAccounts(ctx, models.Accounts())
}

// Fetch exports every category for the account named by --account.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("account")
	if name == "" || name == "all" {
		return r.runAccounts(ctx, models.Accounts())
	}

	account, err := models.ParseAccount(name)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return r.runAccounts(ctx, []models.Account{account})
}

// FetchTasks fetches each task listed in --input and writes them, with an id-keyed copy.
func (r *Runner) FetchTasks(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String("input")
	if input == "" {
		return fmt.Errorf("%w: --input is required", shared.ErrMissingArgument)
	}

	account, err := models.ParseAccount(cmd.String("account"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	engine, err := r.engine(ctx, account)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		plan, err := r.plan(account)
		if err != nil {
			return err
		}
		output = plan.Path(tasks.OpTasks)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh, done := r.progress(fmt.Sprintf("Fetching tasks listed in %s", input), cancel)
	rep := engine.FetchTasksFromFile(ctx, progressCh, input, output)
	close(progressCh)
	<-done

	r.say("\n%s\n", ui.RenderReport(rep))
	return rep.Err
}

// Group writes the records of --input keyed by id.
func (r *Runner) Group(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String("input")
	if input == "" {
		return fmt.Errorf("%w: --input is required", shared.ErrMissingArgument)
	}

	mode, err := r.mode()
	if err != nil {
		return err
	}

	engine := tasks.NewExportEngine(nil, tasks.EngineOpts{Mode: mode, Logger: r.logger})

	progressCh, done := r.progress(fmt.Sprintf("Grouping %s", input), func() {})
	rep := engine.GroupByIDFromFile(progressCh, input, cmd.String("output"))
	close(progressCh)
	<-done

	r.say("\n%s\n", ui.RenderReport(rep))
	return rep.Err
}

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return nil
}

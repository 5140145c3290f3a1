package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
	"github.com/company/ai-scaffold/internal/detect"
	"github.com/company/ai-scaffold/internal/exitcodes"
	"github.com/company/ai-scaffold/internal/filemanager"
	"github.com/company/ai-scaffold/internal/registry"
	"github.com/company/ai-scaffold/internal/ui"
)

// App is the dependency container for all CLI commands.
type App struct {
	rootCmd    *cobra.Command
	version    string
	commit     string
	date       string
	catalog    *catalog.Catalog
	output     *ui.Output
	projectDir string
	indexURL   string
	token      string
	debug      bool
	noColor    bool
}

// NewApp creates the root command and registers all subcommands.
func NewApp(version, commit, date string) *App {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		catalog: catalog.Default(),
		output:  ui.NewOutput(),
	}

	root := &cobra.Command{
		Use:   "ai-scaffold",
		Short: "Feature-flag driven scaffolding for AI service repositories",
		Long: "Generates the starter layout of an AI/ML Python service and prunes the\n" +
			"parts that belong to features you turned off.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envURL := os.Getenv("AI_SCAFFOLD_INDEX"); envURL != "" && app.indexURL == "" {
				app.indexURL = envURL
			}
			if envToken := os.Getenv("AI_SCAFFOLD_TOKEN"); envToken != "" && app.token == "" {
				app.token = envToken
			}
			if os.Getenv("AI_SCAFFOLD_DEBUG") != "" {
				app.debug = true
			}
			if app.noColor || os.Getenv("AI_SCAFFOLD_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
				app.output.SetNoColor(true)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetGlobalNormalizationFunc(normalizeFlagName)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: exitcodes.UsageError, Message: fmt.Sprintf("%v\nSee '%s --help'.", err, cmd.CommandPath())}
	})

	root.PersistentFlags().StringVar(&app.indexURL, "index", "", "template index URL (overrides AI_SCAFFOLD_INDEX)")
	root.PersistentFlags().StringVar(&app.token, "token", "", "auth token for the template index (overrides AI_SCAFFOLD_TOKEN)")
	root.PersistentFlags().BoolVar(&app.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&app.projectDir, "dir", "", "generated project directory (default: nearest enclosing project)")

	root.AddCommand(
		app.newGenerateCmd(),
		app.newPruneCmd(),
		app.newPlanCmd(),
		app.newVerifyCmd(),
		app.newFlagsCmd(),
		app.newDoctorCmd(),
		app.newOutdatedCmd(),
		app.newVersionCmd(),
	)

	app.rootCmd = root
	return app
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetArgs overrides the command line, for tests.
func (a *App) SetArgs(args []string) {
	a.rootCmd.SetArgs(args)
}

// SetOutput redirects all output, for tests.
func (a *App) SetOutput(stdout, stderr io.Writer) {
	a.output = ui.NewOutputTo(stdout, stderr)
	a.output.SetNoColor(true)
	a.rootCmd.SetOut(stdout)
	a.rootCmd.SetErr(stderr)
}

// normalizeFlagName lets --use_genai and --use-genai name the same flag.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// resolveRoot returns the generated tree to operate on: the positional
// argument, then --dir, then the nearest enclosing project.
func (a *App) resolveRoot(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.projectDir != "" {
		return a.projectDir, nil
	}
	root, err := detect.FindRoot(".")
	if err != nil {
		return "", &ExitError{
			Code:    exitcodes.ConfigError,
			Message: "no generated project found here or above; pass the project directory or use --dir",
		}
	}
	return root, nil
}

// openRoot opens an existing generated tree.
func (a *App) openRoot(dir string) (billy.Filesystem, error) {
	fs, err := filemanager.OpenRoot(dir)
	if err != nil {
		return nil, &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}
	a.debugf("project root: %s", dir)
	return fs, nil
}

// loadContext runs the loader chain for the tree in fs. obj, when set, wins.
func (a *App) loadContext(fs billy.Filesystem, obj *answers.Answers) (*answers.Answers, error) {
	res, err := answers.DefaultChain(a.catalog, obj, fs).Load()
	if err != nil {
		return nil, &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}
	for _, r := range res.Rejected {
		a.output.Warning("Ignoring %s: %v", r.Source, r.Err)
	}
	a.debugf("feature context loaded from %s", res.Source)
	return res.Answers, nil
}

// newRegistryClient creates a template index client with the current settings.
func (a *App) newRegistryClient() *registry.Client {
	var opts []registry.Option
	if a.indexURL != "" {
		opts = append(opts, registry.WithBaseURL(a.indexURL))
	}
	if a.token != "" {
		opts = append(opts, registry.WithToken(a.token))
	}
	return registry.NewClient(opts...)
}

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// debugf prints a debug message if debug mode is enabled.
func (a *App) debugf(format string, args ...interface{}) {
	if a.debug {
		a.output.Debug(format, args...)
	}
}

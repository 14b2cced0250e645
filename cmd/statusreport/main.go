package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type (
	// cmd corresponds to the top-level `statusreport` command.
	cmd struct {
		Config string `help:"Path to the statusreport.yaml config file." type:"path" env:"STATUSREPORT_CONFIG"`
		Debug  bool   `help:"Enable debug logging emitted to stderr."`

		// Version is the sub-command to show the version.
		Version struct{} `cmd:"" help:"Show version."`
		// Generate is the sub-command parsed by the `cmdGenerate` struct.
		Generate cmdGenerate `cmd:"" help:"Fill in the weekly status form and generate the summary."`
		// Invoke is the sub-command parsed by the `cmdInvoke` struct.
		Invoke cmdInvoke `cmd:"" help:"Send a raw prompt to the Bedrock text-completion API."`
		// Models is the sub-command parsed by the `cmdModels` struct.
		Models cmdModels `cmd:"" help:"List the foundation models available in the region."`
	}
	// cmdGenerate corresponds to `statusreport generate` command.
	cmdGenerate struct {
		Report string `help:"Read the report from a YAML file instead of the interactive form." type:"path"`
		Model  string `help:"Model id. Overrides the config file."`
		Raw    bool   `help:"Print the summary without markdown rendering."`
	}
	// cmdInvoke corresponds to `statusreport invoke` command.
	cmdInvoke struct {
		Prompt string            `arg:"" help:"Prompt text."`
		Model  string            `help:"Model id. Overrides the config file."`
		Param  map[string]string `help:"Body parameter as key=value, repeatable. Values are parsed as YAML scalars." placeholder:"KEY=VALUE"`
		Wrap   bool              `help:"Wrap the prompt in Human/Assistant turn markers." default:"true" negatable:""`
	}
	// cmdModels corresponds to `statusreport models` command.
	cmdModels struct {
		Vendor string `help:"Only list models from this vendor (e.g. Anthropic)."`
		All    bool   `help:"Include models that do not generate text."`
	}
)

// globals are the root flags shared by every sub-command.
type globals struct {
	configPath     string
	configExplicit bool
	debug          bool
}

type (
	generateFn func(context.Context, cmdGenerate, globals, io.Writer, io.Writer) error
	invokeFn   func(context.Context, cmdInvoke, globals, io.Writer, io.Writer) error
	modelsFn   func(context.Context, cmdModels, globals, io.Writer, io.Writer) error
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	doMain(ctx, os.Stdout, os.Stderr, os.Args[1:], os.Exit, runGenerate, runInvoke, runModels)
}

// doMain is the main entry point for the CLI. It parses the command line arguments and executes the appropriate command.
//
//   - stdout is the writer to use for standard output. Mainly for testing.
//   - stderr is the writer to use for standard error. Mainly for testing.
//   - `args` are the command line arguments without the program name.
//   - exitFn is the function to call to exit the program. Mainly for testing.
//   - gf, inf and mf run the sub-commands. Mainly for testing.
func doMain(ctx context.Context, stdout, stderr io.Writer, args []string, exitFn func(int),
	gf generateFn,
	inf invokeFn,
	mf modelsFn,
) {
	if exitFn == nil {
		exitFn = os.Exit
	}
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("statusreport"),
		kong.Description("Weekly project status summaries from a hosted text model"),
		kong.Writers(stdout, stderr),
		kong.Exit(exitFn),
	)
	if err != nil {
		log.Fatalf("Error creating parser: %v", err)
	}
	parsed, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	g := globals{configPath: c.Config, configExplicit: c.Config != "", debug: c.Debug}
	if g.configPath == "" {
		g.configPath = "statusreport.yaml"
	}

	switch parsed.Command() {
	case "version":
		_, _ = fmt.Fprintf(stdout, "statusreport: %s\n", version)
		return
	case "generate":
		err = gf(ctx, c.Generate, g, stdout, stderr)
	case "invoke <prompt>":
		err = inf(ctx, c.Invoke, g, stdout, stderr)
	case "models":
		err = mf(ctx, c.Models, g, stdout, stderr)
	default:
		panic("unreachable")
	}
	if err != nil {
		_, _ = fmt.Fprintln(stderr, failureNotice(err))
		exitFn(1)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/genai-go/genai"
	"github.com/leofalp/genai-go/internal/config"
	"github.com/leofalp/genai-go/internal/json"
	"github.com/leofalp/genai-go/providers/observability/slogobs"
)

const rootLongDesc string = `genai sends prompts to the generative-language API.

Settings are read, in increasing priority, from defaults, the YAML file
named by --config, a .env file in the working directory, the environment
(GEMINI_API_KEY, GEMINI_API_HOST, GEMINI_MODEL, GENAI_TIMEOUT,
GENAI_LOG_LEVEL, GENAI_LOG_FORMAT, GENAI_LOG_FILE) and the flags below.`

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	apiKey     string
	host       string
	model      string
	logLevel   string
	logFormat  string
	logFile    string
	timeout    time.Duration
}

// session is what a subcommand needs once the flags are parsed.
type session struct {
	cfg      *config.Config
	observer *slogobs.Observer
	logFile  io.Closer
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	sess := &session{}

	cmd := &cobra.Command{
		Use:           "genai",
		Short:         "Talk to the generative-language API",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return sess.open(flags)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return sess.close()
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	persistent.StringVar(&flags.apiKey, "api-key", "", "API key (default $GEMINI_API_KEY)")
	persistent.StringVar(&flags.host, "host", "", "replace the API host, optionally with a scheme")
	persistent.StringVarP(&flags.model, "model", "m", "", "model name (default \""+config.DefaultModel+"\")")
	persistent.DurationVar(&flags.timeout, "timeout", 0, "bound buffered calls, and the wait for a stream to start (default 2m)")
	persistent.StringVar(&flags.logLevel, "log-level", "", "trace, debug, info, warn or error")
	persistent.StringVar(&flags.logFormat, "log-format", "", "compact or json")
	persistent.StringVar(&flags.logFile, "log-file", "", "write logs to a rotating file instead of stderr")

	cmd.AddCommand(
		newGenerateCmd(sess),
		newStreamCmd(sess),
		newCountTokensCmd(sess),
		newModelsCmd(sess),
		newConfigCmd(sess),
	)
	return cmd
}

func (s *session) open(flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	flags.apply(cfg)

	observer, logFile, err := newObserver(cfg.Log)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.observer = observer
	s.logFile = logFile
	return nil
}

func (s *session) close() error {
	if s.logFile == nil {
		return nil
	}
	err := s.logFile.Close()
	s.logFile = nil
	return err
}

// apply overrides cfg with every flag that was given.
func (f *rootFlags) apply(cfg *config.Config) {
	override := func(target *string, value string) {
		if value != "" {
			*target = value
		}
	}
	override(&cfg.APIKey, f.apiKey)
	override(&cfg.Host, f.host)
	override(&cfg.Model, f.model)
	override(&cfg.Log.Level, f.logLevel)
	override(&cfg.Log.Format, f.logFormat)
	override(&cfg.Log.File, f.logFile)
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
}

// newModel builds the model the subcommands call, with extra options applied
// after the configured ones.
func (s *session) newModel(extra ...genai.ModelOption) (*genai.GenerativeModel, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []genai.ModelOption{
		genai.WithObserver(s.observer),
		genai.WithHTTPClient(newHTTPClient(s.cfg.Timeout)),
	}
	if s.cfg.Host != "" {
		opts = append(opts, genai.WithBaseHost(s.cfg.Host))
	}
	if generation := generationConfig(s.cfg.Generation); generation != nil {
		opts = append(opts, genai.WithGenerationConfig(*generation))
	}
	opts = append(opts, extra...)

	return genai.NewGenerativeModel(s.cfg.Model, s.cfg.APIKey, opts...), nil
}

func generationConfig(defaults config.Generation) *genai.GenerationConfig {
	if defaults.Temperature == nil && defaults.TopP == nil && defaults.TopK == nil &&
		defaults.MaxOutputTokens == nil && len(defaults.StopSequences) == 0 {
		return nil
	}
	return &genai.GenerationConfig{
		Temperature:     defaults.Temperature,
		TopP:            defaults.TopP,
		TopK:            defaults.TopK,
		MaxOutputTokens: defaults.MaxOutputTokens,
		StopSequences:   defaults.StopSequences,
	}
}

// writeJSON prints value indented, followed by a newline.
func writeJSON(out io.Writer, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

// newHTTPClient bounds the wait for response headers only. A client-wide
// timeout would also cover reading the body and cut long streams short.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

// requestContext bounds a buffered call, body included, by the configured
// timeout.
func (s *session) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(commandContext(cmd))
	}
	return context.WithTimeout(commandContext(cmd), s.cfg.Timeout)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

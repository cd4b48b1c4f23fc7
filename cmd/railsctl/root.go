package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/railskit/di"
	"github.com/kbukum/railskit/errors"
	"github.com/kbukum/railskit/logger"
	"github.com/kbukum/railskit/observability"
	"github.com/kbukum/railskit/resource"
	"github.com/kbukum/railskit/transport"
)

const serviceName = "railsctl"

var initObservability = observability.Init

// Container keys.
const (
	keyLogger    = "logger"
	keyTransport = "transport"
)

type options struct {
	configPath string
	baseURL    string
	logLevel   string
	params     []string
	data       string
}

// session holds everything a command needs once the manifest is loaded.
type session struct {
	registry resource.Registry
	log      *logger.Logger
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Query and change Rails-style REST resources",
		Long: `railsctl loads resource definitions from a YAML file and runs CRUD
operations against them. Values in the file can be overridden with
RAILSKIT_ prefixed environment variables, e.g. RAILSKIT_CLIENT_BASE_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "definitions file (default: search ./railskit.yml, ./resources.yml, ./config/)")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "override client.base_url")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().StringArrayVar(&opts.params, "param", nil, "query parameter key=value (repeatable)")

	root.AddCommand(
		newResourcesCmd(opts),
		newQueryCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newVersionCmd(),
	)
	return root
}

// open loads the manifest and builds the transport stack and registry.
func open(ctx context.Context, opts *options) (_ *session, err error) {
	m, err := resource.LoadManifest(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.baseURL != "" {
		m.Client.BaseURL = opts.baseURL
		if err := m.Client.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.logLevel != "" {
		m.Logging.Level = opts.logLevel
		if err := m.Logging.Validate(); err != nil {
			return nil, errors.InvalidConfig("log-level", err.Error())
		}
	}
	if len(m.Resources) == 0 {
		return nil, errors.InvalidConfig("resources", "no resources defined")
	}

	log := logger.New(&m.Logging, serviceName)
	logger.SetGlobalLogger(log)

	shutdown, err := initObservability(ctx, &m.Observability)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = shutdown(ctx)
		}
	}()

	container := resource.DefaultContainer()
	_ = container.RegisterSingleton(keyLogger, log)
	err = container.Register(keyTransport, func(c di.Container) (transport.Transport, error) {
		return newTransport(m, di.MustResolve[*logger.Logger](c, keyLogger))
	})
	if err != nil {
		return nil, err
	}

	tr, err := di.Resolve[transport.Transport](container, keyTransport)
	if err != nil {
		return nil, err
	}

	registry, err := resource.NewFactory(tr,
		resource.WithResolver(container),
		resource.WithLogger(log),
	).DefineAll(m.Resources)
	if err != nil {
		return nil, err
	}

	return &session{registry: registry, log: log, shutdown: shutdown}, nil
}

// newTransport wraps the HTTP adapter with request ids, logging and, when
// enabled, tracing and metrics.
func newTransport(m *resource.Manifest, log *logger.Logger) (transport.Transport, error) {
	if m.Client.Name == "" || m.Client.Name == "railskit" {
		m.Client.Name = serviceName
	}
	adapter, err := transport.New(m.Client, transport.WithAdapterLogger(log))
	if err != nil {
		return nil, err
	}

	middlewares := []transport.Middleware{transport.WithRequestID(), transport.WithLogging(log)}
	if m.Observability.Enabled {
		metrics, err := observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares,
			transport.WithTracing(serviceName),
			transport.WithMetrics(metrics, serviceName),
		)
	}
	return transport.Chain(middlewares...)(adapter), nil
}

// run opens a session, calls fn and prints its result as indented JSON.
func run(cmd *cobra.Command, opts *options, fn func(ctx context.Context, s *session) (any, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.shutdown(ctx) }()

	out, err := fn(ctx, s)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

// parseParams turns key=value pairs into query parameters. Repeated keys
// collect into a list.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("param %q is not key=value", pair), nil)
		}
		switch prev := params[k].(type) {
		case nil:
			params[k] = v
		case []any:
			params[k] = append(prev, v)
		default:
			params[k] = []any{prev, v}
		}
	}
	return params, nil
}

// parseData decodes the --data flag into an object.
func parseData(data string) (map[string]any, error) {
	if strings.TrimSpace(data) == "" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, errors.InvalidInput("--data must be a JSON object", err)
	}
	return out, nil
}

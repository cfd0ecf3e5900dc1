package main

import (
	"encoding/json"
	"github.com/ThalesGroup/apicall"
	"github.com/ThalesGroup/apicall/config"
	"github.com/ThalesGroup/apicall/internal/logger"
	"github.com/ansel1/merry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"io"
	"strconv"
)

type app struct {
	out        io.Writer
	configPath string
	baseURL    string

	// requester overrides the configured service, for tests.
	requester apicall.Requester

	cfg *config.Config
	log *zap.Logger
	svc apicall.Requester
}

func newRootCommand(out io.Writer) *cobra.Command {
	return newApp(out, nil).command()
}

func newApp(out io.Writer, r apicall.Requester) *app {
	return &app{out: out, requester: r}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:               "postsdemo",
		Short:             "Fetches posts from a JSON API",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a config file")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "API base URL, overrides the configuration")

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lists all posts",
		Args:  cobra.NoArgs,
		RunE:  a.list,
	})
	root.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Fetches one post",
		Args:  cobra.ExactArgs(1),
		RunE:  a.get,
	})
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	a.cfg = cfg

	a.log, err = logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	if a.requester != nil {
		a.svc = a.requester
		return nil
	}

	client, err := cfg.NewClient(a.log)
	if err != nil {
		return err
	}
	a.svc = apicall.NewService(client)
	return nil
}

func (a *app) teardown(*cobra.Command, []string) {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) list(cmd *cobra.Command, _ []string) error {
	posts, err := apicall.Request(cmd.Context(), a.svc, PostsEndpoint(a.cfg.BaseURL))
	if err != nil {
		return merry.Prepend(err, "listing posts")
	}
	a.log.Info("fetched posts", zap.Int("count", len(posts)))
	return a.print(posts)
}

func (a *app) get(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return merry.Errorf("invalid post id %q", args[0])
	}
	post, err := apicall.Request(cmd.Context(), a.svc, PostEndpoint(a.cfg.BaseURL, id))
	if err != nil {
		return merry.Prependf(err, "fetching post %d", id)
	}
	return a.print(post)
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/apireview"
	"github.com/reoring/apireview/canvas"
	"github.com/reoring/apireview/i18n"
	"github.com/reoring/apireview/internal/httpapi"
	"github.com/reoring/apireview/openapi"
	"github.com/reoring/apireview/session"
)

type rootFlags struct {
	v3Path     string
	v4Path     string
	configPath string
	asJSON     bool
	verbose    bool
}

// app is what every subcommand runs against once flags are parsed.
type app struct {
	cfg  Config
	log  *slog.Logger
	sess *session.Session
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "apireview",
		Short:         "Review two versions of an OpenAPI document side by side",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.v3Path, "v3", "", "path to the current (read-only) document")
	pf.StringVar(&f.v4Path, "v4", "", "path to the proposed (editable) document")
	pf.StringVar(&f.configPath, "config", "", "optional YAML config file")
	pf.BoolVar(&f.asJSON, "json", false, "print JSON instead of text")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")
	_ = root.MarkPersistentFlagRequired("v3")
	_ = root.MarkPersistentFlagRequired("v4")

	root.AddCommand(
		newPairsCmd(f),
		newLayoutCmd(f),
		newInspectCmd(f),
		newServeCmd(f),
	)
	return root
}

// setup loads the config and both documents.
func setup(ctx context.Context, cmd *cobra.Command, f *rootFlags) (*app, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.level()
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	sess, err := session.New(
		session.WithLogger(logger),
		session.WithGeometry(cfg.Geometry),
		session.WithLoadOptions(openapi.Options{Logger: logger}),
	)
	if err != nil {
		return nil, err
	}
	i18n.SetLanguage(cfg.Language)
	if err := sess.LoadFiles(ctx, f.v3Path, f.v4Path); err != nil {
		return nil, describeLoadError(err)
	}
	return &app{cfg: cfg, log: logger, sess: sess}, nil
}

// describeLoadError appends one localized line per validation issue.
func describeLoadError(err error) error {
	iss, ok := apireview.AsIssues(err)
	if !ok {
		return err
	}
	var b strings.Builder
	for _, is := range iss {
		fmt.Fprintf(&b, "\n  %s: %s", is.Path, i18n.T(is.Code, nil))
		if is.Message != "" {
			fmt.Fprintf(&b, " (%s)", is.Message)
		}
	}
	return fmt.Errorf("%w%s", err, b.String())
}

func writeJSON(w io.Writer, v any) error {
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPairsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List operations present in both documents, grouped by path prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), cmd, f)
			if err != nil {
				return err
			}
			pairs := a.sess.Pairs()
			out := cmd.OutOrStdout()
			if f.asJSON {
				type pairJSON struct {
					PathPrefix  string `json:"pathPrefix"`
					OperationID string `json:"operationId"`
					V3          string `json:"v3"`
					V4          string `json:"v4"`
				}
				rows := make([]pairJSON, 0, len(pairs))
				for _, p := range pairs {
					rows = append(rows, pairJSON{p.PathPrefix, p.V3.OperationID, routeLine(p.V3), routeLine(p.V4)})
				}
				return writeJSON(out, rows)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PREFIX\tOPERATION\tV3\tV4")
			for _, p := range pairs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.PathPrefix, p.V3.OperationID, routeLine(p.V3), routeLine(p.V4))
			}
			return tw.Flush()
		},
	}
}

func routeLine(r *apireview.Route) string {
	return strings.ToUpper(r.Method) + " " + r.Path
}

func newLayoutCmd(f *rootFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out the paired operations and write the board as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context(), cmd, f)
			if err != nil {
				return err
			}
			board := canvas.NewBoard(canvas.WithViewport(a.cfg.Viewport.Width, a.cfg.Viewport.Height))
			res, err := a.sess.Layout(board)
			if err != nil {
				return err
			}
			a.log.Info("layout done", slog.Int("shapes", res.ShapeCount), slog.Int("bindings", len(res.Bindings)))
			if outPath == "" || outPath == "-" {
				return board.WriteJSON(cmd.OutOrStdout())
			}
			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := board.WriteJSON(file); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newInspectCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <v3|v4> [operationId|schema]",
		Short: "Print a document's routes, or the field tree of one route or schema",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			side := apireview.Side(args[0])
			if !side.Valid() {
				return fmt.Errorf("side must be v3 or v4, got %q", args[0])
			}
			a, err := setup(cmd.Context(), cmd, f)
			if err != nil {
				return err
			}
			spec := a.sess.Spec(side)
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				fmt.Fprintf(out, "%s %s (%s)\n", spec.Title, spec.Version, side)
				for _, r := range spec.Routes {
					fmt.Fprintf(out, "  %-7s %-40s %s\n", strings.ToUpper(r.Method), r.Path, r.OperationID)
				}
				fmt.Fprintf(out, "schemas: %s\n", strings.Join(spec.Schemas.Names(), ", "))
				return nil
			}
			if r, ok := spec.Route(args[1]); ok {
				if f.asJSON {
					return writeJSON(out, r)
				}
				printRoute(out, r)
				return nil
			}
			if sc, ok := spec.Schema(args[1]); ok {
				if f.asJSON {
					return writeJSON(out, sc.Root)
				}
				printTree(out, sc.Root, 0)
				return nil
			}
			return fmt.Errorf("no route or schema named %q in %s", args[1], side)
		},
	}
}

func printRoute(w io.Writer, r *apireview.Route) {
	fmt.Fprintf(w, "%s %s (%s)\n", strings.ToUpper(r.Method), r.Path, r.OperationID)
	if len(r.Parameters) > 0 {
		fmt.Fprintln(w, "parameters:")
		for _, p := range r.Parameters {
			printTree(w, p, 1)
		}
	}
	if r.RequestBody != nil && r.RequestBody.Schema != nil {
		fmt.Fprintf(w, "request body (%s):\n", r.RequestBody.MediaType)
		printTree(w, r.RequestBody.Schema, 1)
	}
	for _, resp := range r.Responses {
		fmt.Fprintf(w, "response %s:\n", resp.StatusCode)
		if resp.Schema != nil {
			printTree(w, resp.Schema, 1)
		}
	}
}

func printTree(w io.Writer, n *apireview.FieldNode, depth int) {
	req := ""
	if n.Required {
		req = " *"
	}
	fmt.Fprintf(w, "%s%s: %s%s\n", strings.Repeat("  ", depth), n.Label(), n.TypeSummary, req)
	for _, c := range n.Children {
		printTree(w, c, depth+1)
	}
	if n.Items != nil && len(n.Items.Children) > 0 {
		for _, c := range n.Items.Children {
			printTree(w, c, depth+1)
		}
	}
	for _, v := range n.Variants {
		printTree(w, v, depth+1)
	}
}

func newServeCmd(f *rootFlags) *cobra.Command {
	var listen string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review session over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := setup(ctx, cmd, f)
			if err != nil {
				return err
			}
			if listen != "" {
				a.cfg.Listen = listen
			}
			if watch {
				go func() {
					err := a.sess.Watch(ctx, f.v3Path, f.v4Path, a.cfg.Debounce, nil)
					if err != nil {
						a.log.Error("watch stopped", slog.Any("error", err))
					}
				}()
			}
			srv := &http.Server{
				Addr:              a.cfg.Listen,
				Handler:           httpapi.NewRouter(httpapi.NewHandlers(a.sess, a.log).WithViewport(a.cfg.Viewport.Width, a.cfg.Viewport.Height)),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			a.log.Info("serving", slog.String("addr", a.cfg.Listen), slog.Bool("watch", watch))
			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload when either document changes")
	return cmd
}

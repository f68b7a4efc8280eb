package inspect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"cssinval/config"
	"cssinval/state"
)

// buildIndex loads stylesheets named on command line. Stylesheets which
// failed to load are logged, command continues with the rest unless nothing
// has been indexed.
func buildIndex(ctx context.Context, cmd *cli.Command, log *zap.Logger) (*state.LocalEnv, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return nil, errors.New("no stylesheets have been specified")
	}
	if err := env.BuildIndex(ctx, paths...); err != nil {
		if errors.Is(err, context.Canceled) || env.Index == nil || env.Index.Stats().Stylesheets == 0 {
			return nil, err
		}
		log.Warn("Some stylesheets were not indexed", zap.Error(err))
	}
	return env, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// openOutput returns destination for command output, STDOUT when name is empty.
func openOutput(cmd *cli.Command, name string) (io.Writer, func() error, error) {
	if len(name) == 0 {
		return stdout(cmd), func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create destination file '%s': %w", name, err)
	}
	return f, f.Close, nil
}

// RunIndex builds invalidation index and outputs its dump.
func RunIndex(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("index")

	if env, err = buildIndex(ctx, cmd, log); err != nil {
		return err
	}

	format := env.Cfg.Dump.Format
	if name := cmd.String("format"); len(name) > 0 {
		if format, err = config.ParseDumpFormat(name); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := WriteIndex(&buf, env.Index.Features(), format); err != nil {
		return err
	}
	env.Rpt.StoreData("index-"+format.String()+".txt", buf.Bytes())

	dst := env.Cfg.Dump.Destination
	if name := cmd.String("output"); len(name) > 0 {
		dst = name
	}
	out, closeOut, err := openOutput(cmd, dst)
	if err != nil {
		return err
	}
	defer func() {
		if er := closeOut(); er != nil && err == nil {
			err = er
		}
	}()

	if _, err = buf.WriteTo(out); err != nil {
		return fmt.Errorf("unable to write index: %w", err)
	}
	return nil
}

// RunQuery prints invalidation sets which would be scheduled for requested
// element changes.
func RunQuery(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("query")

	q := Query{
		Classes:    cmd.StringSlice("class"),
		IDs:        cmd.StringSlice("id"),
		Attributes: cmd.StringSlice("attr"),
		Pseudos:    cmd.StringSlice("pseudo"),
		Nth:        cmd.Bool("nth"),
		Part:       cmd.Bool("part"),
		Siblings:   uint32(cmd.Uint("siblings")),
	}
	if len(q.Classes)+len(q.IDs)+len(q.Attributes)+len(q.Pseudos) == 0 && !q.Nth && !q.Part && q.Siblings == 0 {
		return errors.New("nothing to query, specify at least one feature")
	}

	env, err := buildIndex(ctx, cmd, log)
	if err != nil {
		return err
	}

	results, err := q.Collect(env.Index.Features(), nil)
	if err != nil {
		return err
	}
	out := stdout(cmd)
	for _, r := range results {
		if r.Lists.IsEmpty() {
			log.Debug("Nothing to invalidate", zap.String("kind", r.Kind), zap.String("key", r.Key))
		}
		fmt.Fprintln(out, r.String())
	}
	return nil
}

// RunHas reports elements of HTML document which require :has() invalidation
// when inserted or removed.
func RunHas(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("has")

	docName := cmd.String("html")
	if len(docName) == 0 {
		return errors.New("no HTML document has been specified")
	}
	f, err := os.Open(docName)
	if err != nil {
		return fmt.Errorf("unable to open HTML document: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return fmt.Errorf("unable to parse HTML document '%s': %w", docName, err)
	}
	env.Rpt.Store("document.html", docName)

	if env, err = buildIndex(ctx, cmd, log); err != nil {
		return err
	}

	needs, out := 0, stdout(cmd)
	for _, r := range CheckHas(env.Index.Features(), doc) {
		if r.Needs {
			needs++
		}
		fmt.Fprintln(out, r.String())
	}
	log.Info("Document checked", zap.String("document", docName), zap.Int("affected", needs))
	return nil
}

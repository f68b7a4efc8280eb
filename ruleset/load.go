package ruleset

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssinval/archive"
	"cssinval/css"
)

// source is a place stylesheets are read from: file system or zip container.
type source interface {
	read(name string) ([]byte, error)
	// resolve maps @import reference of stylesheet name to another name of
	// the same source.
	resolve(name, ref string) (string, bool)
	display(name string) string
}

type fileSource struct{}

func (fileSource) read(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	return data, nil
}

func (fileSource) resolve(name, ref string) (string, bool) {
	p, ok := localReference(ref)
	if !ok {
		return "", false
	}
	if filepath.IsAbs(p) {
		return p, true
	}
	return filepath.Join(filepath.Dir(name), p), true
}

func (fileSource) display(name string) string { return name }

type archiveSource struct {
	archive string
	entries map[string][]byte
}

func (a archiveSource) read(name string) ([]byte, error) {
	data, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("unable to read stylesheet: %s: %w", a.display(name), os.ErrNotExist)
	}
	return data, nil
}

func (a archiveSource) resolve(name, ref string) (string, bool) {
	p, ok := localReference(ref)
	if !ok {
		return "", false
	}
	p = filepath.ToSlash(p)
	if path.IsAbs(p) {
		return path.Clean(p[1:]), true
	}
	return path.Join(path.Dir(name), p), true
}

func (a archiveSource) display(name string) string { return a.archive + "!/" + name }

// localReference returns path part of @import URL without scheme or host.
func localReference(ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// LoadFiles parses stylesheet files and adds them to the rule set. Zip
// containers, recognized by extension or by content, contribute every
// stylesheet they hold. Files
// which cannot be read are reported together, the rest is still added. With
// imports enabled local @import references are loaded before the importing
// stylesheet, each stylesheet at most once.
func (rs *RuleSet) LoadFiles(ctx context.Context, parser *css.Parser, paths ...string) error {
	seen := make(map[string]bool)
	var errs error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		container, err := archive.IsContainer(p)
		if err != nil {
			// reading stylesheet reports the problem
			rs.log.Debug("Unable to detect file type", zap.String("path", p), zap.Error(err))
		}
		if !container {
			abs, err := filepath.Abs(p)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("unable to resolve stylesheet path %q: %w", p, err))
				continue
			}
			errs = multierr.Append(errs, rs.load(ctx, parser, fileSource{}, abs, seen))
			continue
		}

		entries, err := archive.ReadStylesheets(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unable to read archive %q: %w", p, err))
			continue
		}
		src := archiveSource{archive: p, entries: entries}
		for _, name := range slices.Sorted(maps.Keys(entries)) {
			errs = multierr.Append(errs, rs.load(ctx, parser, src, name, seen))
		}
	}
	return errs
}

func (rs *RuleSet) load(ctx context.Context, parser *css.Parser, src source, name string, seen map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := src.display(name)
	if seen[key] {
		rs.log.Debug("Stylesheet already loaded", zap.String("source", key))
		return nil
	}
	seen[key] = true

	data, err := src.read(name)
	if err != nil {
		return err
	}
	sheet := parser.Parse(data, key)

	var errs error
	if rs.followImports {
		for _, ref := range sheet.Imports {
			next, ok := src.resolve(name, ref)
			if !ok {
				rs.log.Warn("Remote @import skipped", zap.String("source", key), zap.String("url", ref))
				continue
			}
			errs = multierr.Append(errs, rs.load(ctx, parser, src, next, seen))
		}
	}

	rs.AddStylesheet(sheet)
	return errs
}

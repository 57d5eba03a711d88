// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command i18n_extract writes the gettext template of the UI strings.
//
// It collects i18n.MsgKey constants and conversions, and the constant
// arguments of the i18n Tr, TrC, TrN and NewUserError functions.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/tools/go/packages"

	"codeberg.org/ride/inlinetranslator/core/audit"
)

// key identifies a gettext entry.
type key struct {
	ctx    string
	id     string
	plural string
}

type ref struct {
	file string
	line int
}

type extractor struct {
	refs map[key][]ref
	root string
	fset *token.FileSet
	info *types.Info
	i18n map[string]bool
}

func main() {
	audit.SetDefaultLogger()

	outPath := flag.String("o", "po/inline-translator.pot", "output file")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get working directory")
	}

	pkgs, err := packages.Load(&packages.Config{Mode: packages.LoadAllSyntax}, "./...")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load packages")
	}

	if packages.PrintErrors(pkgs) > 0 {
		log.Fatal().Msg("Failed to load packages due to errors")
	}

	refs := extract(pkgs, projectRoot(wd))

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	var b strings.Builder
	if err := writePOT(&b, refs, gitVersion(), time.Now()); err != nil {
		log.Fatal().Err(err).Msg("Failed to render message template")
	}

	if err := os.WriteFile(*outPath, []byte(b.String()), 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write output file")
	}

	log.Info().Str("path", *outPath).Int("messages", len(refs)).Msg("Wrote message template")
}

// extract walks the syntax of pkgs and records every message.
func extract(pkgs []*packages.Package, root string) map[key][]ref {
	refs := map[key][]ref{}
	i18nPkgs := i18nPackages(pkgs)

	for _, p := range pkgs {
		if p.TypesInfo == nil {
			continue
		}

		e := &extractor{refs: refs, root: root, fset: p.Fset, info: p.TypesInfo, i18n: i18nPkgs}

		for _, f := range p.Syntax {
			ast.Inspect(f, func(n ast.Node) bool {
				switch x := n.(type) {
				case *ast.ValueSpec:
					e.valueSpec(x)
				case *ast.CallExpr:
					e.call(x)
				}

				return true
			})
		}
	}

	return refs
}

// i18nPackages returns the paths of the packages named i18n that declare a
// string-based MsgKey type.
func i18nPackages(pkgs []*packages.Package) map[string]bool {
	out := make(map[string]bool)

	for _, p := range pkgs {
		if p.Name != "i18n" || p.Types == nil {
			continue
		}

		tn, ok := p.Types.Scope().Lookup("MsgKey").(*types.TypeName)
		if !ok {
			continue
		}

		if basic, ok := tn.Type().Underlying().(*types.Basic); ok && basic.Kind() == types.String {
			out[p.PkgPath] = true
		}
	}

	return out
}

func (e *extractor) isMsgKey(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}

	return named.Obj().Name() == "MsgKey" && e.i18n[named.Obj().Pkg().Path()]
}

func (e *extractor) constString(expr ast.Expr) (string, bool) {
	tv, ok := e.info.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

// valueSpec records constants declared with the MsgKey type.
func (e *extractor) valueSpec(spec *ast.ValueSpec) {
	for _, name := range spec.Names {
		c, ok := e.info.Defs[name].(*types.Const)
		if !ok || !e.isMsgKey(c.Type()) || c.Val().Kind() != constant.String {
			continue
		}

		e.add(name.Pos(), key{id: constant.StringVal(c.Val())})
	}
}

// call records MsgKey conversions and calls of the translation functions.
func (e *extractor) call(x *ast.CallExpr) {
	if tv, ok := e.info.Types[x.Fun]; ok && tv.IsType() {
		if len(x.Args) == 1 && e.isMsgKey(tv.Type) {
			if id, ok := e.constString(x.Args[0]); ok {
				e.add(x.Args[0].Pos(), key{id: id})
			}
		}

		return
	}

	sel, ok := x.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}

	fn, ok := e.info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || !e.i18n[fn.Pkg().Path()] {
		return
	}

	// Positions of the context, msgid and plural arguments; -1 when absent.
	var ctxArg, idArg, pluralArg int

	switch fn.Name() {
	case "Tr", "NewUserError":
		ctxArg, idArg, pluralArg = -1, 1, -1
	case "TrC":
		ctxArg, idArg, pluralArg = 1, 2, -1
	case "TrN":
		ctxArg, idArg, pluralArg = -1, 1, 2
	default:
		return
	}

	k := key{}

	for _, arg := range []struct {
		index int
		dst   *string
	}{{ctxArg, &k.ctx}, {idArg, &k.id}, {pluralArg, &k.plural}} {
		if arg.index < 0 {
			continue
		}

		if arg.index >= len(x.Args) {
			return
		}

		s, ok := e.constString(x.Args[arg.index])
		if !ok {
			return
		}

		*arg.dst = s
	}

	e.add(x.Args[idArg].Pos(), k)
}

func (e *extractor) add(pos token.Pos, k key) {
	p := e.fset.Position(pos)

	file := p.Filename
	if rel, err := filepath.Rel(e.root, file); err == nil {
		file = rel
	}

	e.refs[k] = append(e.refs[k], ref{file: filepath.ToSlash(file), line: p.Line})
}

// writePOT writes refs as a gettext template, sorted by context and msgid.
func writePOT(w io.Writer, refs map[key][]ref, version string, now time.Time) error {
	var b strings.Builder

	fmt.Fprintln(&b, `msgid ""`)
	fmt.Fprintln(&b, `msgstr ""`)
	fmt.Fprintf(&b, "\"Project-Id-Version: inline-translator %s\\n\"\n", version)
	fmt.Fprintf(&b, "\"POT-Creation-Date: %s\\n\"\n", now.UTC().Format("2006-01-02 15:04+0000"))
	fmt.Fprintln(&b, `"Language: en\n"`)
	fmt.Fprintln(&b, `"MIME-Version: 1.0\n"`)
	fmt.Fprintln(&b, `"Content-Type: text/plain; charset=UTF-8\n"`)
	fmt.Fprintln(&b, `"Content-Transfer-Encoding: 8bit\n"`)
	fmt.Fprintln(&b, `"Plural-Forms: nplurals=2; plural=(n != 1);\n"`)

	keys := slices.SortedFunc(maps.Keys(refs), func(a, b key) int {
		return cmp.Or(cmp.Compare(a.ctx, b.ctx), cmp.Compare(a.id, b.id), cmp.Compare(a.plural, b.plural))
	})

	for _, k := range keys {
		rs := slices.Clone(refs[k])
		slices.SortFunc(rs, func(a, b ref) int {
			return cmp.Or(cmp.Compare(a.file, b.file), cmp.Compare(a.line, b.line))
		})
		rs = slices.Compact(rs)

		fmt.Fprint(&b, "\n#:")

		for _, r := range rs {
			fmt.Fprintf(&b, " %s:%d", r.file, r.line)
		}

		fmt.Fprintln(&b)

		if k.ctx != "" {
			fmt.Fprintf(&b, "msgctxt %q\n", k.ctx)
		}

		fmt.Fprintf(&b, "msgid %q\n", k.id)

		if k.plural != "" {
			fmt.Fprintf(&b, "msgid_plural %q\n", k.plural)
			fmt.Fprintln(&b, `msgstr[0] ""`)
			fmt.Fprintln(&b, `msgstr[1] ""`)
		} else {
			fmt.Fprintln(&b, `msgstr ""`)
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// gitVersion describes the checkout, or returns "dev" outside of git.
func gitVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return "dev"
	}

	return strings.TrimSpace(string(out))
}

// projectRoot returns the git toplevel, the nearest directory with a go.mod,
// or wd.
func projectRoot(wd string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = wd

	if out, err := cmd.Output(); err == nil {
		if root := strings.TrimSpace(string(out)); root != "" {
			return filepath.Clean(root)
		}
	}

	for dir := filepath.Clean(wd); ; {
		if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !fi.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return wd
		}

		dir = parent
	}
}

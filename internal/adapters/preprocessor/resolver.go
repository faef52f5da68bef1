package preprocessor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/openge/internal/core/ports"
	"go.trai.ch/zerr"
)

type resolution struct {
	ctx     context.Context
	scanner ports.PreprocessorScanner
	req     domain.ResolveRequest

	defines    map[string]*domain.DefineDirective
	seen       map[string]struct{}
	exists     map[string]bool
	referenced map[string]struct{}
	fromPCH    map[string]struct{}
}

// Resolve computes the transitive include closure of req.Path. Files reached
// through req.ForceIncludesFromPCH are left out of the result because their
// content is already part of the precompiled header.
//
// The only macros defined up front are req.GlobalDefinitions, so callers pass
// the predefined macros of the compiler they resolve for.
func Resolve(
	ctx context.Context,
	scanner ports.PreprocessorScanner,
	req domain.ResolveRequest,
) (*domain.ResolutionResult, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	r := &resolution{
		ctx:        ctx,
		scanner:    scanner,
		req:        req,
		defines:    make(map[string]*domain.DefineDirective, len(req.GlobalDefinitions)),
		seen:       make(map[string]struct{}),
		exists:     make(map[string]bool),
		referenced: make(map[string]struct{}),
		fromPCH:    make(map[string]struct{}),
	}
	for name, value := range req.GlobalDefinitions {
		r.defines[name] = &domain.DefineDirective{Identifier: name, Expansion: value}
	}

	target := normalizePath(req.Path)
	for _, path := range req.ForceIncludesFromPCH {
		if err := r.visit(normalizePath(path), []string{target}, r.fromPCH); err != nil {
			return nil, err
		}
	}
	for _, path := range req.ForceIncludes {
		if err := r.visit(normalizePath(path), []string{target}, r.referenced); err != nil {
			return nil, err
		}
	}
	if err := r.visit(target, nil, nil); err != nil {
		return nil, err
	}

	deps := make([]string, 0, len(r.referenced))
	for path := range r.referenced {
		if _, ok := r.fromPCH[path]; ok {
			continue
		}
		deps = append(deps, path)
	}
	slices.Sort(deps)

	return &domain.ResolutionResult{
		DependsOnPaths: deps,
		ResolutionTime: time.Since(start),
	}, nil
}

func validateRequest(req domain.ResolveRequest) error {
	check := func(field string, paths ...string) error {
		for _, p := range paths {
			if !filepath.IsAbs(normalizePath(p)) {
				return zerr.With(zerr.With(domain.ErrPathNotAbsolute, "field", field), "path", p)
			}
		}
		return nil
	}
	return errors.Join(
		check("path", req.Path),
		check("force_includes_from_pch", req.ForceIncludesFromPCH...),
		check("force_includes", req.ForceIncludes...),
		check("include_dirs", req.IncludeDirs...),
		check("system_include_dirs", req.SystemIncludeDirs...),
	)
}

// visit processes path. parents is the include chain that led to it, outermost
// first; into collects the visited files and is nil for the target itself.
func (r *resolution) visit(path string, parents []string, into map[string]struct{}) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	chain := append(slices.Clone(parents), path)
	r.seen[path] = struct{}{}
	if into != nil {
		into[path] = struct{}{}
	} else {
		// Includes of the target file are dependencies of the target.
		into = r.referenced
	}

	scan, err := r.scanner.ScanFile(r.ctx, path)
	if err != nil {
		return r.fail(chain, err)
	}
	return r.directives(chain, into, scan.Result.Directives)
}

func (r *resolution) directives(chain []string, into map[string]struct{}, ds []domain.Directive) error {
	for i := range ds {
		d := &ds[i]
		switch d.Kind {
		case domain.DirectiveIf:
			ok, err := evaluate(d.If.Condition, r.defines)
			if err != nil {
				return r.fail(chain, err)
			}
			switch {
			case ok:
				if err := r.directives(chain, into, d.If.Body); err != nil {
					return err
				}
			case d.If.Else != nil:
				if err := r.directives(chain, into, []domain.Directive{*d.If.Else}); err != nil {
					return err
				}
			}
		case domain.DirectiveBlock:
			if err := r.directives(chain, into, d.Block); err != nil {
				return err
			}
		case domain.DirectiveDefine:
			r.defines[d.Define.Identifier] = d.Define
		case domain.DirectiveUndef:
			delete(r.defines, d.Undef)
		case domain.DirectiveInclude:
			if err := r.include(chain, into, d.Include); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolution) include(chain []string, into map[string]struct{}, inc *domain.IncludeDirective) error {
	kind, value := inc.Kind, inc.Path
	if kind == domain.IncludeExpansion {
		expanded, err := r.expandInclude(value)
		if err != nil {
			return r.fail(chain, err)
		}
		kind, value = expanded.Kind, expanded.Path
	}

	found, ok := r.find(chain, kind, value)
	if !ok {
		return r.fail(chain, &domain.IncludeNotFoundError{SearchValue: value})
	}
	if _, ok := r.seen[found]; ok {
		return nil
	}
	return r.visit(found, chain, into)
}

// expandInclude expands #include MACRO into a quoted or system include.
func (r *resolution) expandInclude(text string) (domain.IncludeDirective, error) {
	value := strings.TrimSpace(expandMacros(text, r.defines, nil))
	switch {
	case len(value) > 1 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`):
		return domain.IncludeDirective{Kind: domain.IncludeQuoted, Path: value[1 : len(value)-1]}, nil
	case len(value) > 1 && strings.HasPrefix(value, "<") && strings.HasSuffix(value, ">"):
		return domain.IncludeDirective{Kind: domain.IncludeSystem, Path: value[1 : len(value)-1]}, nil
	}

	identifier := leadingIdentifier(value)
	if identifier == "" {
		identifier = value
	}
	return domain.IncludeDirective{}, &domain.IdentifierNotDefinedError{Identifier: identifier, Expression: text}
}

// find locates an include. Quoted includes search the including file's directory
// and its include parents before the include directories; system includes search
// the system include directories first.
func (r *resolution) find(chain []string, kind domain.IncludeKind, value string) (string, bool) {
	value = filepath.FromSlash(strings.ReplaceAll(value, `\`, "/"))

	if kind != domain.IncludeSystem {
		for i := len(chain) - 1; i >= 0; i-- {
			if path, ok := r.consider(filepath.Join(filepath.Dir(chain[i]), value)); ok {
				return path, true
			}
		}
	}

	dirs := r.req.IncludeDirs
	if kind == domain.IncludeSystem {
		dirs = slices.Concat(r.req.SystemIncludeDirs, r.req.IncludeDirs)
	}
	for _, dir := range dirs {
		if path, ok := r.consider(filepath.Join(normalizePath(dir), value)); ok {
			return path, true
		}
	}
	return "", false
}

func (r *resolution) consider(path string) (string, bool) {
	exists, ok := r.exists[path]
	if !ok {
		info, err := os.Stat(path)
		exists = err == nil && !info.IsDir()
		r.exists[path] = exists
	}
	return path, exists
}

// fail converts err into a ResolutionError carrying the include chain.
func (r *resolution) fail(chain []string, err error) error {
	if ctxErr := r.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &domain.ResolutionError{Chain: slices.Clone(chain), Err: err}
}

func normalizePath(path string) string {
	return filepath.Clean(filepath.FromSlash(strings.ReplaceAll(path, `\`, "/")))
}

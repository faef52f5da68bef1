// Package dispatcher turns build sets into task graphs and runs them across the worker pool.
package dispatcher

import (
	"encoding/xml"
	"io"
	"strings"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
)

// supportedFormatVersion is the only BuildSet FormatVersion understood.
const supportedFormatVersion = "1"

type xmlBuildSet struct {
	XMLName       xml.Name         `xml:"BuildSet"`
	FormatVersion string           `xml:"FormatVersion,attr"`
	Environments  []xmlEnvironment `xml:"Environments>Environment"`
	Projects      []xmlProject     `xml:"Project"`
}

type xmlEnvironment struct {
	Name      string        `xml:"Name,attr"`
	Tools     []xmlTool     `xml:"Tools>Tool"`
	Variables []xmlVariable `xml:"Variables>Variable"`
}

type xmlTool struct {
	Name            string `xml:"Name,attr"`
	AllowRemote     string `xml:"AllowRemote,attr"`
	GroupPrefix     string `xml:"GroupPrefix,attr"`
	Params          string `xml:"Params,attr"`
	Path            string `xml:"Path,attr"`
	OutputFileMasks string `xml:"OutputFileMasks,attr"`
}

type xmlVariable struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:"Value,attr"`
}

type xmlProject struct {
	Name  string    `xml:"Name,attr"`
	Env   string    `xml:"Env,attr"`
	Tasks []xmlTask `xml:"Task"`
}

type xmlTask struct {
	SourceFile          string `xml:"SourceFile,attr"`
	Caption             string `xml:"Caption,attr"`
	Name                string `xml:"Name,attr"`
	Tool                string `xml:"Tool,attr"`
	WorkingDir          string `xml:"WorkingDir,attr"`
	SkipIfProjectFailed string `xml:"SkipIfProjectFailed,attr"`
	DependsOn           string `xml:"DependsOn,attr"`
}

// ParseBuildSet reads a BuildSet document and returns its validated task graph.
// Task names are unique across the whole document.
func ParseBuildSet(r io.Reader) (*domain.BuildSet, error) {
	var doc xmlBuildSet
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, zerr.With(domain.ErrInvalidBuildSet, "cause", err.Error())
	}
	if doc.FormatVersion != supportedFormatVersion {
		return nil, zerr.With(domain.ErrUnsupportedBuildSetVersion, "format_version", doc.FormatVersion)
	}

	set := &domain.BuildSet{
		Environments: make(map[string]*domain.Environment, len(doc.Environments)),
		Graph:        domain.NewGraph(),
	}

	for _, xe := range doc.Environments {
		env, err := parseEnvironment(xe)
		if err != nil {
			return nil, err
		}
		if _, exists := set.Environments[env.Name]; exists {
			return nil, zerr.With(domain.ErrEnvironmentAlreadyExists, "environment", env.Name)
		}
		set.Environments[env.Name] = env
	}

	for _, xp := range doc.Projects {
		env, ok := set.Environments[xp.Env]
		if !ok {
			return nil, zerr.With(zerr.With(domain.ErrMissingEnvironment, "environment", xp.Env), "project", xp.Name)
		}
		set.Projects = append(set.Projects, domain.Project{Name: xp.Name, Environment: xp.Env})

		project := domain.NewInternedString(xp.Name)
		for _, xt := range xp.Tasks {
			task, err := parseTask(xt, project, env)
			if err != nil {
				return nil, err
			}
			if err := set.Graph.AddTask(task); err != nil {
				return nil, err
			}
		}
	}

	if err := set.Graph.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func parseEnvironment(xe xmlEnvironment) (*domain.Environment, error) {
	if xe.Name == "" {
		return nil, zerr.With(domain.ErrInvalidBuildSet, "reason", "environment without a name")
	}
	env := &domain.Environment{
		Name:      xe.Name,
		Tools:     make(map[string]*domain.Tool, len(xe.Tools)),
		Variables: make(map[string]string, len(xe.Variables)),
	}
	for _, xt := range xe.Tools {
		if xt.Name == "" || xt.Path == "" {
			return nil, zerr.With(zerr.With(domain.ErrInvalidBuildSet, "reason", "tool without a name or path"), "environment", xe.Name)
		}
		if _, exists := env.Tools[xt.Name]; exists {
			return nil, zerr.With(zerr.With(domain.ErrToolAlreadyExists, "tool", xt.Name), "environment", xe.Name)
		}
		allowRemote, err := parseBool(xt.AllowRemote, "AllowRemote")
		if err != nil {
			return nil, zerr.With(err, "tool", xt.Name)
		}
		env.Tools[xt.Name] = &domain.Tool{
			Name:            xt.Name,
			Path:            xt.Path,
			Params:          xt.Params,
			GroupPrefix:     xt.GroupPrefix,
			OutputFileMasks: xt.OutputFileMasks,
			AllowRemote:     allowRemote,
		}
	}
	for _, v := range xe.Variables {
		env.Variables[v.Name] = v.Value
	}
	return env, nil
}

func parseTask(xt xmlTask, project domain.InternedString, env *domain.Environment) (*domain.Task, error) {
	if xt.Name == "" {
		return nil, zerr.With(zerr.With(domain.ErrInvalidBuildSet, "reason", "task without a name"), "project", project.String())
	}
	tool, ok := env.Tools[xt.Tool]
	if !ok {
		return nil, zerr.With(zerr.With(domain.ErrMissingTool, "tool", xt.Tool), "task", xt.Name)
	}
	skip, err := parseBool(xt.SkipIfProjectFailed, "SkipIfProjectFailed")
	if err != nil {
		return nil, zerr.With(err, "task", xt.Name)
	}

	var deps []domain.InternedString
	for dep := range strings.SplitSeq(xt.DependsOn, ";") {
		if dep = strings.TrimSpace(dep); dep != "" {
			deps = append(deps, domain.NewInternedString(dep))
		}
	}

	return &domain.Task{
		Name:                domain.NewInternedString(xt.Name),
		Caption:             xt.Caption,
		Project:             project,
		SourceFile:          xt.SourceFile,
		WorkingDir:          xt.WorkingDir,
		Tool:                tool,
		Environment:         env,
		Dependencies:        deps,
		SkipIfProjectFailed: skip,
	}, nil
}

// parseBool accepts true and false in any case. A missing attribute is false.
func parseBool(value, attr string) (bool, error) {
	switch {
	case value == "", strings.EqualFold(value, "false"):
		return false, nil
	case strings.EqualFold(value, "true"):
		return true, nil
	default:
		return false, zerr.With(zerr.With(domain.ErrInvalidBuildSet, "attribute", attr), "value", value)
	}
}

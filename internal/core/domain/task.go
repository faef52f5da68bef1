package domain

// Tool is an executable declared by a build set environment.
type Tool struct {
	Name            string
	Path            string
	Params          string
	GroupPrefix     string
	OutputFileMasks string
	AllowRemote     bool
}

// Environment groups the tools and variables available to the projects that reference it.
type Environment struct {
	Name      string
	Tools     map[string]*Tool
	Variables map[string]string
}

// Task represents a unit of work in a build set.
// It uses InternedString for fields that are frequently repeated to save memory.
type Task struct {
	Name                InternedString
	Caption             string
	Project             InternedString
	SourceFile          string
	WorkingDir          string
	Tool                *Tool
	Environment         *Environment
	Dependencies        []InternedString
	SkipIfProjectFailed bool
}

// DisplayName returns the caption when present, falling back to the task name.
func (t *Task) DisplayName() string {
	if t.Caption != "" {
		return t.Caption
	}
	return t.Name.String()
}

// EnvironmentList returns the environment variables as KEY=VALUE pairs.
func (t *Task) EnvironmentList() []string {
	if t.Environment == nil {
		return nil
	}
	env := make([]string, 0, len(t.Environment.Variables))
	for k, v := range t.Environment.Variables {
		env = append(env, k+"="+v)
	}
	return env
}

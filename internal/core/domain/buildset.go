package domain

// Project groups tasks that share an environment.
type Project struct {
	Name        string
	Environment string
}

// BuildSet is a parsed job: its environments, projects and validated task graph.
type BuildSet struct {
	Environments map[string]*Environment
	Projects     []Project
	Graph        *Graph
}

// JobSpec is a job submitted to the dispatcher.
type JobSpec struct {
	JobXML           string
	WorkingDirectory string
	BuildNodeName    string
	Environment      map[string]string
}

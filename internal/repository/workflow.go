package repository

import (
	"fmt"

	laberrors "lab/internal/errors"
)

// Workflow selects how merge requests are opened for a repository.
type Workflow string

const (
	// WorkflowWorkBranch pushes feature branches to origin itself.
	WorkflowWorkBranch Workflow = "workbranch"
	// WorkflowFork pushes to a personal fork of origin.
	WorkflowFork Workflow = "fork"
)

const (
	labSection     = "lab"
	workflowOption = "workflow"
)

// ParseWorkflow validates a workflow name.
func ParseWorkflow(s string) (Workflow, error) {
	switch w := Workflow(s); w {
	case WorkflowFork, WorkflowWorkBranch:
		return w, nil
	default:
		return "", laberrors.E(laberrors.Op("repository.ParseWorkflow"), laberrors.KindInvalid,
			fmt.Sprintf("unknown workflow %q, expected %q or %q", s, WorkflowFork, WorkflowWorkBranch))
	}
}

// Workflow returns the workflow stored under [lab] in the repository config.
// Repositories that never chose one use WorkflowWorkBranch.
func (r *Repo) Workflow() (Workflow, error) {
	cfg, err := r.config()
	if err != nil {
		return "", laberrors.E(laberrors.Op("repository.Workflow"), laberrors.KindIO, "failed to read repository config", err)
	}

	value := cfg.Raw.Section(labSection).Option(workflowOption)
	if value == "" {
		return WorkflowWorkBranch, nil
	}
	return ParseWorkflow(value)
}

// SetWorkflow stores w under [lab] in the repository config.
func (r *Repo) SetWorkflow(w Workflow) error {
	const op laberrors.Op = "repository.SetWorkflow"

	if _, err := ParseWorkflow(string(w)); err != nil {
		return err
	}

	cfg, err := r.config()
	if err != nil {
		return laberrors.E(op, laberrors.KindIO, "failed to read repository config", err)
	}
	cfg.Raw.Section(labSection).SetOption(workflowOption, string(w))

	if err := r.setConfig(cfg); err != nil {
		return laberrors.E(op, laberrors.KindIO, "failed to write repository config", err)
	}

	if r.logger != nil {
		r.logger.Debug("Stored workflow", "workflow", string(w))
	}
	return nil
}

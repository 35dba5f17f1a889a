package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/app"
	"github.com/five82/hireboard/internal/domain"
	"github.com/five82/hireboard/internal/reconcile"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "hireboard",
		Short:         "Terminal board for a hiring pipeline",
		Long:          "hireboard shows jobs, candidates and assessments from the hiring API.\nChanges apply locally at once and roll back if the service rejects them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{ConfigPath: configPath})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/hireboard/config.toml)")

	root.AddCommand(
		newSyncCmd(&configPath),
		newJobsCmd(&configPath),
		newCandidatesCmd(&configPath),
		newMetricsCmd(&configPath),
	)
	return root
}

// withRuntime boots a runtime that logs to stderr, loads the local store and
// tries one sync before fn runs. When persist is set, the resulting state is
// written back to the local store after fn succeeds.
func withRuntime(cmd *cobra.Command, configPath string, persist bool, fn func(ctx context.Context, rt *app.Runtime) error) error {
	rt, err := app.Bootstrap(app.Options{
		ConfigPath: configPath,
		LogOutput:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	ctx := cmd.Context()
	rt.Start(ctx)
	if err := fn(ctx, rt); err != nil {
		return errorMessage(err)
	}
	if !persist {
		return nil
	}
	if err := reconcile.Persist(ctx, rt.DB, rt.State.Collections()); err != nil {
		return fmt.Errorf("save local store: %w", err)
	}
	return nil
}

// errorMessage replaces a rejected call with the server's message.
func errorMessage(err error) error {
	if api.StatusCode(err) != 0 {
		return errors.New(api.Message(err))
	}
	return err
}

func newSyncCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch everything from the API into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.Bootstrap(app.Options{
				ConfigPath: *configPath,
				LogOutput:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			ctx := cmd.Context()
			if _, err := rt.Reconciler.LoadFromStore(ctx); err != nil {
				rt.Log.WithError(err).Warn("load from local store failed")
			}
			if err := rt.Reconciler.SyncWithAPI(ctx); err != nil {
				return fmt.Errorf("sync: %w", errorMessage(err))
			}
			cols := rt.State.Collections()
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d jobs, %d candidates, %d assessments\n",
				len(cols.Jobs), len(cols.Candidates), len(cols.Assessments))
			return nil
		},
	}
}

func newJobsCmd(configPath *string) *cobra.Command {
	jobs := &cobra.Command{
		Use:   "jobs",
		Short: "List and edit jobs",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List jobs in board order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, *configPath, false, func(ctx context.Context, rt *app.Runtime) error {
				rows := make([][]string, 0)
				for _, job := range rt.State.Collections().Jobs {
					if status != "" && string(job.Status) != status {
						continue
					}
					rows = append(rows, []string{
						strconv.Itoa(job.Order),
						job.ID,
						job.Title,
						string(job.Status),
						strings.Join(job.Tags, ", "),
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no jobs")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "ID", "TITLE", "STATUS", "TAGS"}, rows))
				return nil
			})
		},
	}
	list.Flags().StringVar(&status, "status", "", "only jobs with this status (active or archived)")

	var (
		title string
		tags  []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a job at the end of the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, *configPath, true, func(ctx context.Context, rt *app.Runtime) error {
				job, err := rt.Engine.CreateJob(ctx, domain.NewJob{Title: title, Tags: tags})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", job.Title, job.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "job title")
	add.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach (repeatable)")
	_ = add.MarkFlagRequired("title")

	move := &cobra.Command{
		Use:   "move FROM TO",
		Short: "Move the job at board position FROM to position TO",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex("FROM", args[0])
			if err != nil {
				return err
			}
			to, err := parseIndex("TO", args[1])
			if err != nil {
				return err
			}
			return withRuntime(cmd, *configPath, true, func(ctx context.Context, rt *app.Runtime) error {
				if err := rt.Engine.ReorderJobs(ctx, from, to); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "moved job from %d to %d\n", from, to)
				return nil
			})
		},
	}

	jobs.AddCommand(list, add, move)
	return jobs
}

func newCandidatesCmd(configPath *string) *cobra.Command {
	candidates := &cobra.Command{
		Use:   "candidates",
		Short: "List candidates and move them through the pipeline",
	}

	var jobID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List candidates by pipeline stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, *configPath, false, func(ctx context.Context, rt *app.Runtime) error {
				cands := rt.State.Collections().Candidates
				rows := make([][]string, 0, len(cands))
				for _, stage := range domain.Stages {
					for _, c := range cands {
						if c.Stage != stage || (jobID != "" && c.JobID != jobID) {
							continue
						}
						rows = append(rows, []string{c.ID, c.Name, c.Email, c.JobID, string(c.Stage)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no candidates")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "NAME", "EMAIL", "JOB", "STAGE"}, rows))
				return nil
			})
		},
	}
	list.Flags().StringVar(&jobID, "job", "", "only candidates for this job id")

	stage := &cobra.Command{
		Use:   "stage ID STAGE",
		Short: "Move a candidate to a pipeline stage",
		Long:  "Move a candidate to one of: " + stageNames() + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, next := args[0], domain.Stage(strings.ToLower(args[1]))
			if domain.StageIndex(next) < 0 {
				return fmt.Errorf("unknown stage %q (want one of %s)", args[1], stageNames())
			}
			return withRuntime(cmd, *configPath, true, func(ctx context.Context, rt *app.Runtime) error {
				cand, err := rt.Engine.MoveCandidate(ctx, id, next)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now in %s\n", cand.Name, cand.Stage)
				return nil
			})
		},
	}

	candidates.AddCommand(list, stage)
	return candidates
}

func newMetricsCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Keep the local store in sync and serve Prometheus metrics",
		Long:  "Runs without the board. The local store is resynced whenever the API comes back, and /metrics is served on --addr (default metrics_addr).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Watch(cmd.Context(), app.Options{
				ConfigPath: *configPath,
				LogOutput:  cmd.ErrOrStderr(),
			}, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, e.g. :9464")
	return cmd
}

func parseIndex(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a board position (0 or more), got %q", name, raw)
	}
	return n, nil
}

func stageNames() string {
	names := make([]string, len(domain.Stages))
	for i, s := range domain.Stages {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

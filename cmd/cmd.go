// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:  "tdx",
		Usage: "Export Todoist tasks and projects for the personal and work accounts",
		Description: "Run without a subcommand to fetch completed tasks, active tasks, active projects and " +
			"archived projects for the personal account, then the work account.",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log progress and request details",
			},
		},
		Before:   r.Load,
		Action:   r.FetchAll,
		Commands: r.register(),
	}
}

// fetchCommand runs every category for one account or both
func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch and export all record categories",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "account",
				Aliases: []string{"a"},
				Usage:   "Account to export: personal, work or all",
				Value:   "all",
			},
		},
		Action: r.Fetch,
	}
}

// tasksCommand looks up tasks by ids read from a previous export
func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Fetch tasks one by one using the ids in an export file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "account",
				Aliases: []string{"a"},
				Usage:   "Account whose token is used",
				Value:   "personal",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Export file (list or id-keyed mapping) to read task ids from",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: <directory>/<account>/<prefix>_<account>_tasks<ext>)",
			},
		},
		Action: r.FetchTasks,
	}
}

// groupCommand rewrites an export keyed by id
func groupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "group",
		Usage: "Group the records of an export file by id",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Export file containing a list of records",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: input with _by_id before the extension)",
			},
		},
		Action: r.Group,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file operations",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file to the --config path",
				Action: r.ConfigInit,
			},
		},
	}
}

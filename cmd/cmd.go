// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage provider authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Google Calendar using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show which provider credentials are configured",
				Action: r.AuthStatus,
			},
		},
	}
}

// transferCommand handles transfer job operations
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Manage and run transfer jobs",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new transfer job",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "from",
						Usage:    "Export service (e.g. smugmug, google-calendar)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Import service (e.g. imgur)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Data type to copy (photos or calendar)",
						Value: "photos",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TransferCreate,
			},
			{
				Name:  "list",
				Usage: "List transfer jobs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (created, in_progress, complete, failed)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by data type",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TransferList,
			},
			{
				Name:  "run",
				Usage: "Run a transfer job, walking the export tree and importing each page",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TransferRun,
			},
			{
				Name:  "report",
				Usage: "Write a Markdown report (and failures CSV) for a finished job",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base path for report files (defaults to the job ID)",
					},
				},
				Action: r.TransferReport,
			},
			{
				Name:  "delete",
				Usage: "Delete a transfer job",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TransferDelete,
			},
		},
	}
}

// servicesCommand lists registered exporters and importers per data type.
func servicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "services",
		Usage: "List available export and import services",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Services,
	}
}

// serveCommand starts the HTTP API server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the transfer HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind to (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive transfers.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for running transfers",
		Action:  r.TUI,
	}
}

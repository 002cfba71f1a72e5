// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Load and print every contact in store order",
		Flags:   append([]cli.Flag{configFlag()}, jsonFlags()...),
		Action:  r.List,
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create a contact",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Contact name (required)",
			},
			&cli.StringFlag{
				Name:    "phone",
				Aliases: []string{"p"},
				Usage:   "Contact phone number (required)",
			},
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Contact email",
			},
		},
		Action: r.Add,
	}
}

func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Overwrite one field of a contact",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "field",
				Aliases:  []string{"f"},
				Usage:    "Field to change: name, phone or email",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "value",
				Usage: "New value for the field",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Edit,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a contact after confirmation",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Delete,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Filter contacts by name or phone",
		ArgsUsage: "<keyword>",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:    "remote",
				Aliases: []string{"r"},
				Usage:   "Ask the store to search instead of filtering locally",
			},
		}, jsonFlags()...),
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "keyword"},
		},
		Action: r.Search,
	}
}

func reorderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "reorder",
		Usage:     "Set the order of every contact",
		ArgsUsage: "<id>...",
		Flags:     []cli.Flag{configFlag()},
		Action:    r.Reorder,
	}
}

func moveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Move one contact to a zero-based position",
		ArgsUsage: "<id> <position>",
		Flags:     []cli.Flag{configFlag()},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
			&cli.StringArg{Name: "position"},
		},
		Action: r.Move,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the contact list to a file",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: text, markdown, csv or json",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to contacts.<ext>)",
			},
		},
		Action: r.Export,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse and edit contacts interactively",
		Flags:  []cli.Flag{configFlag()},
		Action: r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reference contact store backed by SQLite",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a config file and initialize the reference store database",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}

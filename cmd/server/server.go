package server

import (
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/cmd/run"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "show servers",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Action: run.Run(list),
			},
			{
				Name:      "get",
				ArgsUsage: "<name|ip>",
				Action:    run.Run(get),
			},
		},
	}
}

func list(_ *cli.Context, rt *run.Runtime) error {
	return run.Print(rt.Records.Servers())
}

func get(c *cli.Context, rt *run.Runtime) error {
	key := c.Args().First()
	srv, err := rt.Records.Server(key)
	if err != nil {
		if srv, err = rt.Records.ServerByIP(key); err != nil {
			return err
		}
	}
	return run.Print(srv)
}

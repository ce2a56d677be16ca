package records

import (
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/cmd/run"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "records",
		Usage: "import or export the yaml records",
		Subcommands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "replace the records with a yaml file, then save them",
				ArgsUsage: "<file>",
				Action:    run.Run(importRecords),
			},
			{
				Name:      "export",
				ArgsUsage: "<file>",
				Action:    run.Run(exportRecords),
			},
		},
	}
}

func importRecords(c *cli.Context, rt *run.Runtime) error {
	if err := rt.Records.Import(c.Args().First()); err != nil {
		return err
	}
	return rt.SaveRecords(c.Context)
}

func exportRecords(c *cli.Context, rt *run.Runtime) error {
	return rt.Records.Export(c.Args().First())
}

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/cmd/connection"
	"github.com/projecteru2/labflow/cmd/course"
	"github.com/projecteru2/labflow/cmd/records"
	"github.com/projecteru2/labflow/cmd/serve"
	"github.com/projecteru2/labflow/cmd/server"
	"github.com/projecteru2/labflow/cmd/student"
	"github.com/projecteru2/labflow/internal/ver"
)

func main() {
	cli.VersionPrinter = func(_ *cli.Context) {
		fmt.Print(ver.Version())
	}

	app := &cli.App{
		Name:  ver.NAME,
		Usage: "lab records and controller flow provisioning",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "config",
				Usage:   "config files, later ones override earlier ones",
				EnvVars: []string{"LABFLOW_CONFIG"},
			},
		},

		Commands: []*cli.Command{
			student.Command(),
			course.Command(),
			server.Command(),
			connection.Command(),
			records.Command(),
			serve.Command(),
		},

		Version: ver.VERSION,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

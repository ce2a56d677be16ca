package student

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/cmd/run"
	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "student",
		Usage: "manage students",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Action: run.Run(list),
			},
			{
				Name:      "get",
				ArgsUsage: "<code>",
				Action:    run.Run(get),
			},
			{
				Name:   "create",
				Flags:  createFlags(),
				Action: run.Run(create),
			},
		},
	}
}

func createFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "code", Required: true},
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "mac", Required: true},
	}
}

func list(_ *cli.Context, rt *run.Runtime) error {
	return run.Print(rt.Records.Students())
}

func get(c *cli.Context, rt *run.Runtime) error {
	code, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return errors.Wrapf(terrors.ErrInvalidValue, "student code %q", c.Args().First())
	}
	st, err := rt.Records.Student(code)
	if err != nil {
		return err
	}
	return run.Print(st)
}

func create(c *cli.Context, rt *run.Runtime) error {
	st := models.Student{
		Code: c.Int("code"),
		Name: c.String("name"),
		MAC:  c.String("mac"),
	}
	if err := rt.Records.AddStudent(st); err != nil {
		return err
	}
	return rt.SaveRecords(c.Context)
}

package course

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/cmd/run"
	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "course",
		Usage: "manage courses and their students",
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
			{
				Name:      "delete",
				ArgsUsage: "<code>",
				Action:    run.Run(del),
			},
			{
				Name:      "enroll",
				ArgsUsage: "<course> <student>",
				Action:    run.Run(enroll),
			},
			{
				Name:      "unenroll",
				ArgsUsage: "<course> <student>",
				Action:    run.Run(unenroll),
			},
		},
	}
}

func createFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "code", Required: true},
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "status", Value: models.StatusActive},
		&cli.IntSliceFlag{Name: "student", Usage: "enrolled student codes"},
		&cli.StringSliceFlag{
			Name:  "server",
			Usage: "reachable server and its services, e.g. web:ssh+http",
		},
	}
}

func list(_ *cli.Context, rt *run.Runtime) error {
	return run.Print(rt.Records.Courses())
}

func get(c *cli.Context, rt *run.Runtime) error {
	course, err := rt.Records.Course(c.Args().First())
	if err != nil {
		return err
	}
	return run.Print(course)
}

func create(c *cli.Context, rt *run.Runtime) error {
	servers, err := parseServers(c.StringSlice("server"))
	if err != nil {
		return err
	}
	course := models.Course{
		Code:     c.String("code"),
		Name:     c.String("name"),
		Status:   c.String("status"),
		Students: c.IntSlice("student"),
		Servers:  servers,
	}
	if err := rt.Records.AddCourse(course); err != nil {
		return err
	}
	return rt.SaveRecords(c.Context)
}

func parseServers(specs []string) ([]models.CourseServer, error) {
	var servers = make([]models.CourseServer, 0, len(specs))
	for _, spec := range specs {
		name, services, _ := strings.Cut(spec, ":")
		if len(name) < 1 {
			return nil, errors.Wrapf(terrors.ErrInvalidValue, "server %q", spec)
		}
		var cs = models.CourseServer{Name: name}
		if len(services) > 0 {
			cs.AllowedServices = strings.Split(services, "+")
		}
		servers = append(servers, cs)
	}
	return servers, nil
}

func del(c *cli.Context, rt *run.Runtime) error {
	if err := rt.Records.DeleteCourse(c.Args().First()); err != nil {
		return err
	}
	return rt.SaveRecords(c.Context)
}

func enroll(c *cli.Context, rt *run.Runtime) error {
	course, student, err := membershipArgs(c)
	if err != nil {
		return err
	}
	if err := rt.Records.Enroll(course, student); err != nil {
		return err
	}
	return rt.SaveRecords(c.Context)
}

func unenroll(c *cli.Context, rt *run.Runtime) error {
	course, student, err := membershipArgs(c)
	if err != nil {
		return err
	}
	if err := rt.Records.Unenroll(course, student); err != nil {
		return err
	}
	return rt.SaveRecords(c.Context)
}

func membershipArgs(c *cli.Context) (string, int, error) {
	if c.NArg() != 2 {
		return "", 0, errors.Wrap(terrors.ErrInvalidValue, "expects <course> <student>")
	}
	student, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return "", 0, errors.Wrapf(terrors.ErrInvalidValue, "student code %q", c.Args().Get(1))
	}
	return c.Args().First(), student, nil
}

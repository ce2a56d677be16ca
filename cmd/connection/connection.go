package connection

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/cmd/run"
	"github.com/projecteru2/labflow/internal/network/flow"
	"github.com/projecteru2/labflow/internal/service"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:  "connection",
		Usage: "provision and tear down student connections",
		Subcommands: []*cli.Command{
			{
				Name:   "create",
				Flags:  createFlags(),
				Action: run.Run(create),
			},
			{
				Name:   "list",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json"}},
				Action: run.Run(list),
			},
			{
				Name:      "get",
				ArgsUsage: "<handler>",
				Action:    run.Run(get),
			},
			{
				Name:      "delete",
				ArgsUsage: "<handler>",
				Action:    run.Run(del),
			},
		},
	}
}

func createFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "student", Required: true},
		&cli.StringFlag{Name: "server", Required: true},
		&cli.StringFlag{Name: "service", Required: true},
	}
}

func create(c *cli.Context, rt *run.Runtime) error {
	p, err := rt.Engine.Provision(c.Context, service.ConnectionRequest{
		StudentCode: c.Int("student"),
		ServerName:  c.String("server"),
		ServiceName: c.String("service"),
	})
	if p != nil {
		printResults(p.Results)
		if p.Connection != nil {
			fmt.Printf("handler: %s\n", p.Connection.Handler)
		}
	}
	return err
}

func list(c *cli.Context, rt *run.Runtime) error {
	conns, err := rt.Engine.ListConnections(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return run.Print(conns)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HANDLER\tSTUDENT\tSERVER\tSERVICE\tHOPS\tCREATED")
	for _, conn := range conns {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
			conn.Handler, conn.StudentCode, conn.ServerName, conn.ServiceName, conn.Hops,
			humanize.Time(time.Unix(conn.CreatedTime, 0)))
	}
	return w.Flush()
}

func get(c *cli.Context, rt *run.Runtime) error {
	conn, err := rt.Engine.GetConnection(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return run.Print(conn)
}

func del(c *cli.Context, rt *run.Runtime) error {
	results, err := rt.Engine.Teardown(c.Context, c.Args().First())
	printResults(results)
	return err
}

func printResults(results flow.Results) {
	for _, r := range results {
		outcome := "ok"
		if !r.OK() {
			outcome = r.Err.Error()
		}
		fmt.Printf("%-6s %-40s %s\n", r.Op, r.Name, outcome)
	}
}

package run

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/internal/metrics"
	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/internal/network/factory"
	"github.com/projecteru2/labflow/internal/service/engine"
	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/store"
	"github.com/projecteru2/labflow/pkg/utils"
)

// Runner .
type Runner func(*cli.Context, *Runtime) error

// Runtime is everything a command may need, built from the config files.
type Runtime struct {
	ConfigFiles []string
	Config      *configs.Config
	Records     *models.Database
	Metrics     *metrics.Metrics
	Factory     *factory.Factory
	Engine      *engine.Engine
}

// Run wraps fn with the setup and cleanup of a Runtime.
func Run(fn Runner) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt := &Runtime{ConfigFiles: c.StringSlice("config")}

		flush, err := rt.setup()
		if err != nil {
			return err
		}
		defer flush()
		defer func() {
			if err := rt.Engine.Close(); err != nil {
				log.WithFunc("run.Run").Errorf(c.Context, err, "failed to close engine")
			}
		}()

		return fn(c, rt)
	}
}

func (r *Runtime) setup() (func(), error) {
	r.Config = configs.New()
	if err := r.Config.Load(r.ConfigFiles); err != nil {
		return nil, err
	}

	flush, err := log.Setup(log.Config{
		Level:      r.Config.Log.Level,
		UseJSON:    r.Config.Log.UseJSON,
		Filename:   r.Config.Log.Filename,
		MaxSize:    r.Config.Log.MaxSize,
		MaxAge:     r.Config.Log.MaxAge,
		MaxBackups: r.Config.Log.MaxBackups,
		SentryDSN:  r.Config.Log.SentryDSN,
	})
	if err != nil {
		return nil, err
	}

	r.Records = models.NewDatabase()
	if path := r.Config.Records.File; len(path) > 0 {
		switch _, err := os.Stat(path); {
		case err == nil:
			if err := r.Records.Import(path); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, errors.Wrap(err, "")
		}
	}

	if r.Factory, err = factory.New(&r.Config.Controller); err != nil {
		return nil, err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if r.Metrics, err = metrics.New(hostname, r.Factory.GetMetricsCollectors()...); err != nil {
		return nil, err
	}

	st, err := store.New(r.Config)
	if err != nil {
		return nil, err
	}
	if r.Engine, err = engine.New(r.Config, r.Records, st, r.Factory.Driver(), r.Metrics); err != nil {
		return nil, err
	}

	return flush, nil
}

// SaveRecords writes the records back to the configured file.
func (r *Runtime) SaveRecords(ctx context.Context) error {
	path := r.Config.Records.File
	if len(path) < 1 {
		log.WithFunc("run.SaveRecords").Warnf(ctx, "records.file is not set, changes are not saved")
		return nil
	}
	return r.Records.Export(path)
}

// Print writes v as indented json.
func Print(v any) error {
	buf, err := utils.JSONEncode(v, "  ")
	if err != nil {
		return errors.Wrap(err, "")
	}
	fmt.Println(string(buf))
	return nil
}
